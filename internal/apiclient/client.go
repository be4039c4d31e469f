// Package apiclient talks to the remote analysis service.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// Endpoint paths of the analysis service.
const (
	PathAnalyze         = "/api/analyze"
	PathAppStatus       = "/api/app_status"
	PathGeneratePDF     = "/api/generate_pdf"
	PathTestExtraction  = "/api/test_extraction"
	PathTestSearch      = "/api/test_search"
	PathExtractorStats  = "/api/extractor_stats"
	PathResetExtractors = "/api/reset_extractors"
)

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 64 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues single, unretried requests to the analysis service. It is safe
// for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: u, http: httpClient, logger: logger.Named("apiclient")}, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Analyze submits one analysis request and waits for the finished document.
// Failures are *APIError for a refusal by the service and *TransportError otherwise.
func (c *Client) Analyze(ctx context.Context, req schemas.AnalysisRequest) (*schemas.AnalysisResult, error) {
	body, err := req.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode analysis request: %w", err)
	}
	status, data, err := c.do(ctx, http.MethodPost, PathAnalyze, body, "application/json")
	if err != nil {
		return nil, &TransportError{Op: "analyze", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, apiError(status, data)
	}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, &TransportError{Op: "decode analysis", Err: schemas.ErrEmptyBody}
	}
	result, err := schemas.ParseAnalysisResult(data)
	if err != nil {
		return nil, &TransportError{Op: "decode analysis", Err: err}
	}
	c.logger.Debug("Analysis document received", zap.Int("bytes", len(data)), zap.Int("keys", result.Document().Len()))
	return result, nil
}

// Status fetches the service status. On any failure it returns the offline
// status together with the error, so callers can always render an indicator.
func (c *Client) Status(ctx context.Context) (schemas.SystemStatus, error) {
	status, data, err := c.do(ctx, http.MethodGet, PathAppStatus, nil, "application/json")
	if err != nil {
		return schemas.OfflineStatus(), &TransportError{Op: "app status", Err: err}
	}
	var s schemas.SystemStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return schemas.OfflineStatus(), &TransportError{Op: "decode app status", Err: err}
	}
	if status < 200 || status > 299 {
		return schemas.OfflineStatus(), apiError(status, data)
	}
	return s, nil
}

// GeneratePDF sends a result to the server-side renderer and returns the document bytes.
func (c *Client) GeneratePDF(ctx context.Context, result *schemas.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, errors.New("generate pdf: no result")
	}
	body, err := result.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	status, data, err := c.do(ctx, http.MethodPost, PathGeneratePDF, body, "application/pdf")
	if err != nil {
		return nil, &TransportError{Op: "generate pdf", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, apiError(status, data)
	}
	return data, nil
}

// TestExtraction asks the service to extract one page.
func (c *Client) TestExtraction(ctx context.Context, pageURL string) (schemas.ExtractionProbeResponse, error) {
	var out schemas.ExtractionProbeResponse
	err := c.probe(ctx, http.MethodPost, PathTestExtraction, schemas.ExtractionProbeRequest{URL: pageURL}, &out)
	return out, err
}

// TestSearch asks the service to run one search query.
func (c *Client) TestSearch(ctx context.Context, query string) (schemas.SearchProbeResponse, error) {
	var out schemas.SearchProbeResponse
	err := c.probe(ctx, http.MethodPost, PathTestSearch, schemas.SearchProbeRequest{Query: query}, &out)
	return out, err
}

// ExtractorStats fetches per-extractor availability.
func (c *Client) ExtractorStats(ctx context.Context) (schemas.ExtractorStatsResponse, error) {
	var out schemas.ExtractorStatsResponse
	err := c.probe(ctx, http.MethodGet, PathExtractorStats, nil, &out)
	return out, err
}

// ResetExtractors re-enables every extractor on the service.
func (c *Client) ResetExtractors(ctx context.Context) (schemas.ResetExtractorsResponse, error) {
	var out schemas.ResetExtractorsResponse
	err := c.probe(ctx, http.MethodPost, PathResetExtractors, struct{}{}, &out)
	return out, err
}

// probe decodes the body whatever the status: diagnostic endpoints report
// failure through their success flag.
func (c *Client) probe(ctx context.Context, method, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	_, data, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode " + path, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, accept string) (int, []byte, error) {
	endpoint := c.baseURL.JoinPath(path).String()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, data, nil
}

// apiError builds an *APIError, taking the message from a JSON error body when there is one.
func apiError(status int, data []byte) *APIError {
	var body schemas.ErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		msg := body.Error
		if msg == "" {
			msg = body.Message
		}
		return &APIError{StatusCode: status, Message: msg}
	}
	return &APIError{StatusCode: status}
}
