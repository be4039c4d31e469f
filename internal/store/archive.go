// Package store keeps a history of successful analyses.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// ErrNotFound is returned when no archived analysis matches.
var ErrNotFound = errors.New("analysis not found")

// Entry is one archived analysis.
type Entry struct {
	ID          string
	SessionID   string
	Segment     string
	GeneratedAt string
	CreatedAt   time.Time
	// Result is nil in List output.
	Result *schemas.AnalysisResult
}

// NewEntry describes a freshly completed analysis for archiving.
func NewEntry(sessionID string, result *schemas.AnalysisResult) Entry {
	e := Entry{SessionID: sessionID, Result: result}
	if result != nil {
		e.Segment = result.Segment().OrElse("")
		e.GeneratedAt = result.GeneratedAt().OrElse("")
	}
	return e
}

// Archive persists analyses.
type Archive interface {
	// Save stores an entry and returns its id. An empty ID is generated.
	Save(ctx context.Context, entry Entry) (string, error)
	Get(ctx context.Context, id string) (Entry, error)
	// Latest returns the most recently archived entry.
	Latest(ctx context.Context) (Entry, error)
	// List returns up to limit entries, newest first, without their documents.
	List(ctx context.Context, limit int) ([]Entry, error)
}
