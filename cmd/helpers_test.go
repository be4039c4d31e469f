// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/apiclient"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/service"
	"github.com/arqv30/arqv-cli/internal/store"
)

const analysisBody = `{"segmento":"Fitness","avatar_ultra_detalhado":{"perfil_demografico":{"idade":"30-45 anos"}}}`

// remoteService fakes the analysis service and counts analyze calls.
type remoteService struct {
	*httptest.Server
	analyzeHits atomic.Int32
}

func newRemoteService(t *testing.T) *remoteService {
	t.Helper()
	rs := &remoteService{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case apiclient.PathAnalyze:
			rs.analyzeHits.Add(1)
			_, _ = w.Write([]byte(analysisBody))
		case apiclient.PathAppStatus:
			_, _ = w.Write([]byte(`{"status":"production","services":{"search_providers":{"available":3,"total":4}}}`))
		case apiclient.PathGeneratePDF:
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 not really a pdf"))
		case apiclient.PathTestExtraction:
			_, _ = w.Write([]byte(`{"success":true,"content_length":1200}`))
		case apiclient.PathTestSearch:
			_, _ = w.Write([]byte(`{"success":false,"error":"no providers"}`))
		case apiclient.PathExtractorStats:
			_, _ = w.Write([]byte(`{"success":true,"stats":{"global":{"available":true},"jina":{"available":true}}}`))
		case apiclient.PathResetExtractors:
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(rs.Close)
	return rs
}

// memoryArchives serves a shared in-memory archive.
type memoryArchives struct {
	archive store.Archive
	err     error
}

func (p *memoryArchives) Create(context.Context, config.Interface) (store.Archive, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.archive, func() {}, nil
}

func seededArchive(t *testing.T) (*store.MemoryArchive, string) {
	t.Helper()
	result, err := schemas.ParseAnalysisResult([]byte(analysisBody))
	require.NoError(t, err)
	archive := store.NewMemoryArchive()
	id, err := archive.Save(context.Background(), store.NewEntry("session_1_abc", result))
	require.NoError(t, err)
	return archive, id
}

func noMigrations(context.Context, string) (int64, error) { return 0, nil }

// setupCommandEnv quiets logging and isolates the test from the caller's environment.
func setupCommandEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ARQV_LOGGER_LEVEL", "fatal")
	t.Setenv("ARQV_DATABASE_URL", "")
	t.Setenv("ARQV_API_TOKEN", "")
	t.Setenv("ARQV_PROGRESS_INTERVAL", (5 * time.Millisecond).String())
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
}

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func newTestRoot(archives archiveProvider, migrate migrator) *cobra.Command {
	if archives == nil {
		archives = &memoryArchives{archive: store.NewMemoryArchive()}
	}
	if migrate == nil {
		migrate = noMigrations
	}
	return newRootCommand(service.NewComponentFactory(), archives, migrate)
}
