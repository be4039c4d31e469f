// Package viewserver exposes one orchestrator over HTTP for a local browser view.
package viewserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/apiclient"
	"github.com/arqv30/arqv-cli/internal/export"
	"github.com/arqv30/arqv-cli/internal/form"
	"github.com/arqv30/arqv-cli/internal/notify"
	"github.com/arqv30/arqv-cli/internal/orchestrator"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
)

const shutdownTimeout = 10 * time.Second

// Orchestrator is the analysis lifecycle the server drives.
type Orchestrator interface {
	SubmitAsync(ctx context.Context, record schemas.FormRecord, files []schemas.UploadedFileRef) (<-chan orchestrator.Outcome, error)
	Snapshot() orchestrator.Snapshot
	View() results.View
	ExportPDF(ctx context.Context) (export.PDFExport, error)
	ExportDocument() (string, error)
}

// StatusSource reports the remote service status.
type StatusSource interface {
	Status(ctx context.Context) (schemas.SystemStatus, error)
}

// NotificationSource exposes the visible notification.
type NotificationSource interface {
	Current() (notify.Notification, bool)
}

// Server routes HTTP requests to a single orchestrator.
type Server struct {
	orch          Orchestrator
	status        StatusSource
	notifications NotificationSource
	logger        *zap.Logger
	engine        *gin.Engine

	// baseCtx bounds analyses started over HTTP; they outlive the request that started them.
	baseCtx context.Context
}

// New builds the server and registers its routes.
func New(orch Orchestrator, status StatusSource, notifications NotificationSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		orch:          orch,
		status:        status,
		notifications: notifications,
		logger:        logger.Named("viewserver"),
		engine:        gin.New(),
		baseCtx:       context.Background(),
	}
	s.engine.Use(requestID(), logging(s.logger), recovery(s.logger))
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.baseCtx = ctx
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("View server listening.", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("view server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down view server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("view server shutdown: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/view", s.handlePage)

	api := s.engine.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/state", s.handleState)
	api.GET("/view", s.handleView)
	api.GET("/status", s.handleStatus)
	api.POST("/export/pdf", s.handleExportPDF)
	api.POST("/export/document", s.handleExportDocument)
}

// analyzeRequest is the JSON form accepted by POST /api/analyze.
type analyzeRequest struct {
	Fields        map[string]string `json:"fields"`
	UploadedFiles []string          `json:"uploaded_files"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "Request body must be a JSON form")
		return
	}
	files := make([]schemas.UploadedFileRef, len(req.UploadedFiles))
	for i, f := range req.UploadedFiles {
		files[i] = schemas.UploadedFileRef(f)
	}

	done, err := s.orch.SubmitAsync(s.baseCtx, schemas.FormRecord(req.Fields), files)
	switch {
	case err == nil:
	case errors.Is(err, orchestrator.ErrBusy):
		respondError(c, http.StatusConflict, "busy", "An analysis is already in progress")
		return
	case errors.Is(err, form.ErrValidation):
		respondError(c, http.StatusBadRequest, "validation", err.Error())
		return
	default:
		respondError(c, http.StatusServiceUnavailable, "unavailable", err.Error())
		return
	}

	go func() {
		out := <-done
		s.logger.Debug("Analysis finished.", zap.String("state", string(out.State)))
	}()
	c.JSON(http.StatusAccepted, gin.H{"state": s.orch.Snapshot().State})
}

// progressBody is the JSON shape of a progress snapshot.
type progressBody struct {
	Percent   float64 `json:"percent"`
	Phase     int     `json:"phase"`
	Label     string  `json:"label"`
	Step      string  `json:"step"`
	Remaining string  `json:"remaining"`
}

type stateBody struct {
	State          orchestrator.State   `json:"state"`
	LastOutcome    orchestrator.State   `json:"last_outcome,omitempty"`
	SessionID      string               `json:"session_id"`
	ExportsEnabled bool                 `json:"exports_enabled"`
	Progress       *progressBody        `json:"progress,omitempty"`
	Notification   *notify.Notification `json:"notification,omitempty"`
}

func (s *Server) handleState(c *gin.Context) {
	snap := s.orch.Snapshot()
	body := stateBody{
		State:          snap.State,
		LastOutcome:    snap.Last,
		SessionID:      snap.SessionID,
		ExportsEnabled: snap.HasResult,
	}
	if p, ok := snap.Progress.Get(); ok {
		body.Progress = &progressBody{
			Percent:   p.Percent,
			Phase:     p.Phase,
			Label:     p.Label,
			Step:      p.StepCounter(),
			Remaining: p.RemainingText(),
		}
	}
	if s.notifications != nil {
		if n, visible := s.notifications.Current(); visible {
			body.Notification = &n
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleView(c *gin.Context) {
	fragments := s.orch.View().Fragments()
	if fragments == nil {
		fragments = []results.Fragment{}
	}
	c.JSON(http.StatusOK, gin.H{"fragments": fragments})
}

func (s *Server) handlePage(c *gin.Context) {
	var buf bytes.Buffer
	surface, err := reporting.NewHTMLSurface(reporting.NopWriteCloser(&buf))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "render", err.Error())
		return
	}
	if err := reporting.Render(surface, s.orch.View()); err != nil {
		respondError(c, http.StatusInternalServerError, "render", err.Error())
		return
	}
	page, err := surface.HTML()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "render", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) handleStatus(c *gin.Context) {
	st, err := s.status.Status(c.Request.Context())
	if err != nil {
		s.logger.Warn("Status query failed.", zap.Error(err))
	}
	body := gin.H{
		"status": st.Status,
		"online": st.Online(),
		"apis":   st.Ratio(),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleExportPDF(c *gin.Context) {
	out, err := s.orch.ExportPDF(c.Request.Context())
	if err != nil {
		s.exportError(c, err)
		return
	}
	body := gin.H{"path": out.Path, "bytes": out.Bytes}
	if pages, ok := out.Pages.Get(); ok {
		body["pages"] = pages
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleExportDocument(c *gin.Context) {
	path, err := s.orch.ExportDocument()
	if err != nil {
		s.exportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (s *Server) exportError(c *gin.Context, err error) {
	var apiErr *apiclient.APIError
	var transportErr *apiclient.TransportError
	switch {
	case errors.Is(err, orchestrator.ErrNoResult):
		respondError(c, http.StatusConflict, "no_result", "No analysis available")
	case errors.As(err, &apiErr), errors.As(err, &transportErr):
		respondError(c, http.StatusBadGateway, "upstream", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "export", err.Error())
	}
}
