package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqv30/arqv-cli/api/schemas"
)

func TestAnalysisRequest_IsImmutable(t *testing.T) {
	t.Parallel()
	record := schemas.FormRecord{"segmento": "Fitness", "produto": ""}
	files := []schemas.UploadedFileRef{"upload-1"}

	req := schemas.NewAnalysisRequest(record, "session_1_abc", files)
	record["segmento"] = "changed"
	files[0] = "changed"

	v, ok := req.Field("segmento")
	require.True(t, ok)
	assert.Equal(t, "Fitness", v)
	assert.Equal(t, []schemas.UploadedFileRef{"upload-1"}, req.UploadedFiles())

	fields := req.Fields()
	fields["segmento"] = "mutated copy"
	v, _ = req.Field("segmento")
	assert.Equal(t, "Fitness", v)
}

func TestAnalysisRequest_Document(t *testing.T) {
	t.Parallel()
	record := schemas.FormRecord{
		"segmento":   "Fitness",
		"produto":    "",
		"session_id": "spoofed",
	}
	req := schemas.NewAnalysisRequest(record, "session_1_abc", nil)

	body, err := req.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"produto":"","segmento":"Fitness","session_id":"session_1_abc","uploaded_files":[]}`, string(body))
	assert.Equal(t, []string{"produto", "segmento", "session_id", "uploaded_files"}, req.Document().Keys())
}

func TestSystemStatus_Online(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		status   string
		expected bool
	}{
		{schemas.StatusProduction, true},
		{schemas.StatusDevelopment, true},
		{"maintenance", false},
		{schemas.StatusError, false},
		{"", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, schemas.SystemStatus{Status: tc.status}.Online(), tc.status)
	}
	assert.False(t, schemas.OfflineStatus().Online())
}

func TestSystemStatus_Ratio(t *testing.T) {
	t.Parallel()
	s := schemas.SystemStatus{Services: schemas.StatusServices{SearchProviders: schemas.ProviderAvailability{Available: 2, Total: 5}}}
	assert.Equal(t, "2/5", s.Ratio())
	assert.Equal(t, "0/0", schemas.OfflineStatus().Ratio())
}
