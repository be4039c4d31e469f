// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/store"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) API() config.APIConfig {
	args := m.Called()
	return args.Get(0).(config.APIConfig)
}

func (m *MockConfig) Progress() config.ProgressConfig {
	args := m.Called()
	return args.Get(0).(config.ProgressConfig)
}

func (m *MockConfig) Notify() config.NotifyConfig {
	args := m.Called()
	return args.Get(0).(config.NotifyConfig)
}

func (m *MockConfig) Export() config.ExportConfig {
	args := m.Called()
	return args.Get(0).(config.ExportConfig)
}

func (m *MockConfig) Form() config.FormConfig {
	args := m.Called()
	return args.Get(0).(config.FormConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Server() config.ServerConfig {
	args := m.Called()
	return args.Get(0).(config.ServerConfig)
}

func (m *MockConfig) Diagnostics() config.DiagnosticsConfig {
	args := m.Called()
	return args.Get(0).(config.DiagnosticsConfig)
}

// --- Setters ---

func (m *MockConfig) SetAPIBaseURL(u string)           { m.Called(u) }
func (m *MockConfig) SetExportOutputDir(d string)      { m.Called(d) }
func (m *MockConfig) SetExportDocumentFormat(f string) { m.Called(f) }

var _ config.Interface = (*MockConfig)(nil)

// -- Remote Service Mocks --

// MockAnalyzer mocks the analysis endpoint of the remote service.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req schemas.AnalysisRequest) (*schemas.AnalysisResult, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*schemas.AnalysisResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPDFGenerator mocks the server-rendered export endpoint.
type MockPDFGenerator struct {
	mock.Mock
}

func (m *MockPDFGenerator) GeneratePDF(ctx context.Context, result *schemas.AnalysisResult) ([]byte, error) {
	args := m.Called(ctx, result)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

// -- Archive Mock --

// MockArchive mocks store.Archive.
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Save(ctx context.Context, entry store.Entry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockArchive) Get(ctx context.Context, id string) (store.Entry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.Entry), args.Error(1)
}

func (m *MockArchive) Latest(ctx context.Context) (store.Entry, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.Entry), args.Error(1)
}

func (m *MockArchive) List(ctx context.Context, limit int) ([]store.Entry, error) {
	args := m.Called(ctx, limit)
	if entries, ok := args.Get(0).([]store.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ store.Archive = (*MockArchive)(nil)
