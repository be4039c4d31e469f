// File: internal/orchestrator/orchestrator.go
// Description: Owns the lifecycle of one analysis request at a time. It is
// injected with configured components through interfaces, keeping it
// decoupled from transport and display.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/apiclient"
	"github.com/arqv30/arqv-cli/internal/export"
	"github.com/arqv30/arqv-cli/internal/notify"
	"github.com/arqv30/arqv-cli/internal/progress"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
	"github.com/arqv30/arqv-cli/internal/session"
	"github.com/arqv30/arqv-cli/internal/store"
)

// State is a step of the request lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateAwaiting   State = "awaiting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// User-facing notification texts.
const (
	MsgAnalysisSucceeded = "Analysis completed successfully!"
	MsgAnalysisFailed    = "Analysis failed"
	MsgConnectionError   = "Connection error: "
	MsgNoResultPDF       = "No analysis available for download"
	MsgNoResultDocument  = "No analysis available to save"
	MsgPDFSaved          = "PDF downloaded successfully!"
	MsgPDFFailed         = "Failed to generate PDF"
	MsgPDFTransport      = "Failed to download PDF: "
	MsgDocumentSaved     = "Analysis saved locally!"
)

var (
	// ErrBusy is returned when a submission arrives while another is in flight.
	ErrBusy = errors.New("an analysis is already in progress")
	// ErrNoResult is returned by exports before any analysis succeeded.
	ErrNoResult = export.ErrNoResult
	// ErrDisposed is returned once the orchestrator has been disposed.
	ErrDisposed = errors.New("orchestrator disposed")
)

// Analyzer submits analysis requests to the remote service.
type Analyzer interface {
	Analyze(ctx context.Context, req schemas.AnalysisRequest) (*schemas.AnalysisResult, error)
}

// Validator admits or rejects a form record before any network activity.
type Validator interface {
	Validate(record schemas.FormRecord) error
}

// Tracker is the progress indicator driven during a request.
type Tracker interface {
	Start() error
	Stop()
	Snapshot() (progress.State, bool)
}

// PDFExporter saves a server-rendered copy of a result.
type PDFExporter interface {
	Export(ctx context.Context, result *schemas.AnalysisResult) (export.PDFExport, error)
}

// DocumentExporter saves a result directly.
type DocumentExporter interface {
	Export(result *schemas.AnalysisResult) (string, error)
}

// Dependencies groups the collaborators of an Orchestrator. Surface, Archive
// and the exporters are optional.
type Dependencies struct {
	Analyzer  Analyzer
	Validator Validator
	Progress  Tracker
	Projector *results.Projector
	Notifier  notify.Sink
	Surface   reporting.Surface
	PDF       PDFExporter
	Document  DocumentExporter
	Archive   store.Archive
	// SessionID correlates every request of this orchestrator. Generated when empty.
	SessionID string
}

// Outcome is the terminal result of one submission.
type Outcome struct {
	State  State
	Result *schemas.AnalysisResult
	Err    error
}

// Snapshot is a point-in-time view of the orchestrator for display.
type Snapshot struct {
	State State
	// Last is the terminal state of the most recent request, empty before the first.
	Last      State
	SessionID string
	// Progress is present while a request is in flight.
	Progress  schemas.Optional[progress.State]
	HasResult bool
}

// Orchestrator drives Idle → Submitting → Awaiting → Completed|Failed → Idle.
// At most one request is in flight; the last successful result is kept until
// a newer one replaces it.
type Orchestrator struct {
	deps      Dependencies
	logger    *zap.Logger
	sessionID string

	mu       sync.Mutex
	state    State
	last     State
	result   *schemas.AnalysisResult
	view     results.View
	disposed bool
	inflight sync.WaitGroup
	cancel   context.CancelFunc
}

// New creates an idle Orchestrator.
func New(logger *zap.Logger, deps Dependencies) (*Orchestrator, error) {
	if logger == nil ||
		deps.Analyzer == nil ||
		deps.Validator == nil ||
		deps.Progress == nil ||
		deps.Projector == nil ||
		deps.Notifier == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	sessionID := deps.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}
	return &Orchestrator{
		deps:      deps,
		logger:    logger.Named("orchestrator"),
		sessionID: sessionID,
		state:     StateIdle,
		view:      results.EmptyView(),
	}, nil
}

func (o *Orchestrator) SessionID() string { return o.sessionID }

// Submit validates record and runs one analysis to completion.
func (o *Orchestrator) Submit(ctx context.Context, record schemas.FormRecord, files []schemas.UploadedFileRef) Outcome {
	done, err := o.SubmitAsync(ctx, record, files)
	if err != nil {
		return Outcome{State: StateIdle, Err: err}
	}
	return <-done
}

// SubmitAsync validates record and, when admitted, issues the request in the
// background. Rejections (ErrBusy, validation failures) are returned
// synchronously and no request is made. The channel receives exactly one
// Outcome once the orchestrator is back to idle.
func (o *Orchestrator) SubmitAsync(ctx context.Context, record schemas.FormRecord, files []schemas.UploadedFileRef) (<-chan Outcome, error) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return nil, ErrDisposed
	}
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	if err := o.deps.Validator.Validate(record); err != nil {
		o.mu.Unlock()
		o.logger.Info("Submission rejected.", zap.Error(err))
		o.deps.Notifier.Error(err.Error())
		return nil, err
	}
	o.state = StateSubmitting
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.inflight.Add(1)
	o.mu.Unlock()

	req := schemas.NewAnalysisRequest(record, o.sessionID, files)
	if err := o.deps.Progress.Start(); err != nil {
		o.logger.Warn("Progress indicator did not start.", zap.Error(err))
	}

	done := make(chan Outcome, 1)
	go func() {
		defer o.inflight.Done()
		defer cancel()
		done <- o.run(runCtx, req)
		close(done)
	}()
	return done, nil
}

func (o *Orchestrator) run(ctx context.Context, req schemas.AnalysisRequest) Outcome {
	o.setState(StateAwaiting)
	o.logger.Info("Analysis request issued.", zap.String("session_id", req.SessionID()), zap.Int("uploaded_files", len(req.UploadedFiles())))

	result, err := o.deps.Analyzer.Analyze(ctx, req)

	// The indicator is stopped before any terminal side effect so no tick
	// lands after the outcome is visible.
	o.deps.Progress.Stop()

	if err != nil {
		return o.fail(err)
	}
	return o.complete(ctx, req, result)
}

func (o *Orchestrator) fail(err error) Outcome {
	o.mu.Lock()
	o.state = StateFailed
	o.mu.Unlock()

	o.logger.Warn("Analysis failed.", zap.Error(err))
	o.deps.Notifier.Error(FailureMessage(err))

	o.finish(StateFailed)
	return Outcome{State: StateFailed, Err: err}
}

func (o *Orchestrator) complete(ctx context.Context, req schemas.AnalysisRequest, result *schemas.AnalysisResult) Outcome {
	view := o.deps.Projector.Project(result)

	o.mu.Lock()
	o.state = StateCompleted
	o.result = result
	o.view = view
	o.mu.Unlock()

	if o.deps.Surface != nil {
		if err := reporting.Render(o.deps.Surface, view); err != nil {
			o.logger.Error("Failed to render analysis.", zap.Error(err))
		}
	}
	o.logger.Info("Analysis completed.", zap.Int("sections", len(view.Fragments())))
	o.deps.Notifier.Success(MsgAnalysisSucceeded)

	if o.deps.Archive != nil {
		// Archiving uses its own context: a cancelled request has already completed.
		id, err := o.deps.Archive.Save(context.WithoutCancel(ctx), store.NewEntry(req.SessionID(), result))
		if err != nil {
			o.logger.Error("Failed to archive analysis.", zap.Error(err))
		} else {
			o.logger.Debug("Analysis archived.", zap.String("id", id))
		}
	}

	o.finish(StateCompleted)
	return Outcome{State: StateCompleted, Result: result}
}

// finish returns the orchestrator to idle.
func (o *Orchestrator) finish(outcome State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = outcome
	o.state = StateIdle
	o.cancel = nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// Adopt installs a result obtained elsewhere, such as the archive, as the
// current one. It is projected and rendered like a fresh completion but is
// neither archived nor announced.
func (o *Orchestrator) Adopt(result *schemas.AnalysisResult) error {
	if result == nil {
		return ErrNoResult
	}
	view := o.deps.Projector.Project(result)

	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	o.result = result
	o.view = view
	o.mu.Unlock()

	if o.deps.Surface != nil {
		if err := reporting.Render(o.deps.Surface, view); err != nil {
			return fmt.Errorf("failed to render analysis: %w", err)
		}
	}
	return nil
}

// FailureMessage picks the notification text for a failed request: the
// server's message, a generic fallback, or a connection error description.
func FailureMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgAnalysisFailed
	}
	return MsgConnectionError + err.Error()
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the last successful result, or nil.
func (o *Orchestrator) Result() *schemas.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// View returns the projection of the last successful result.
func (o *Orchestrator) View() results.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// ExportsEnabled reports whether a result is available to export.
func (o *Orchestrator) ExportsEnabled() bool {
	return o.Result() != nil
}

// Snapshot captures the lifecycle state and, while a request is in flight,
// the simulated progress.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	snap := Snapshot{
		State:     o.state,
		Last:      o.last,
		SessionID: o.sessionID,
		HasResult: o.result != nil,
	}
	o.mu.Unlock()

	if p, ok := o.deps.Progress.Snapshot(); ok {
		snap.Progress = schemas.Some(p)
	}
	return snap
}

// ExportPDF asks the service to render the current result and saves it.
func (o *Orchestrator) ExportPDF(ctx context.Context) (export.PDFExport, error) {
	if o.deps.PDF == nil {
		return export.PDFExport{}, errors.New("pdf export is not configured")
	}
	result := o.Result()
	if result == nil {
		o.deps.Notifier.Error(MsgNoResultPDF)
		return export.PDFExport{}, ErrNoResult
	}

	out, err := o.deps.PDF.Export(ctx, result)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			o.deps.Notifier.Error(MsgPDFFailed)
		} else {
			o.deps.Notifier.Error(MsgPDFTransport + err.Error())
		}
		return export.PDFExport{}, err
	}
	o.deps.Notifier.Success(MsgPDFSaved)
	return out, nil
}

// ExportDocument saves the current result directly.
func (o *Orchestrator) ExportDocument() (string, error) {
	if o.deps.Document == nil {
		return "", errors.New("document export is not configured")
	}
	result := o.Result()
	if result == nil {
		o.deps.Notifier.Error(MsgNoResultDocument)
		return "", ErrNoResult
	}

	path, err := o.deps.Document.Export(result)
	if err != nil {
		o.deps.Notifier.Error(err.Error())
		return "", err
	}
	o.deps.Notifier.Success(MsgDocumentSaved)
	return path, nil
}

// Dispose cancels any in-flight request, waits for it to reach its terminal
// state and stops the progress indicator. Later submissions fail with
// ErrDisposed.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	cancel := o.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.inflight.Wait()
	o.deps.Progress.Stop()
	o.logger.Debug("Orchestrator disposed.")
}
