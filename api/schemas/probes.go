package schemas

// -- Diagnostic Probe Bodies --

type ExtractionProbeRequest struct {
	URL string `json:"url"`
}

type ExtractionProbeResponse struct {
	Success       bool   `json:"success"`
	ContentLength int    `json:"content_length"`
	Error         string `json:"error,omitempty"`
}

type SearchProbeRequest struct {
	Query string `json:"query"`
}

type SearchProbeResponse struct {
	Success      bool   `json:"success"`
	ResultsCount int    `json:"results_count"`
	Error        string `json:"error,omitempty"`
}

// ExtractorStat is the per-extractor entry of /api/extractor_stats.
type ExtractorStat struct {
	Available bool `json:"available"`
}

// ExtractorStatsResponse carries one entry per extractor. The "global" entry
// aggregates the others and is not an extractor itself.
type ExtractorStatsResponse struct {
	Success bool                     `json:"success"`
	Stats   map[string]ExtractorStat `json:"stats"`
	Error   string                   `json:"error,omitempty"`
}

// GlobalExtractorStat is the aggregate key inside ExtractorStatsResponse.Stats.
const GlobalExtractorStat = "global"

type ResetExtractorsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ErrorBody is the structured error returned by the service on failure.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
