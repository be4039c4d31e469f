// Package session generates the correlation token attached to analysis requests.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLength = 9

// NewID returns a token unique to this process with overwhelming probability,
// shaped like session_<unix millis>_<9 random characters>. It is not a secret.
func NewID() string {
	return format(time.Now(), uuid.New())
}

func format(now time.Time, id uuid.UUID) string {
	suffix := strings.ReplaceAll(id.String(), "-", "")[:suffixLength]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}
