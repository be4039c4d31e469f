package schemas

import "fmt"

// Remote status values reported by /api/app_status.
const (
	StatusProduction  = "production"
	StatusDevelopment = "development"
	// StatusError is assigned locally when the status endpoint cannot be reached.
	StatusError = "error"
)

// SystemStatus is the body of the remote status endpoint.
type SystemStatus struct {
	Status   string         `json:"status"`
	Services StatusServices `json:"services"`
}

type StatusServices struct {
	SearchProviders ProviderAvailability `json:"search_providers"`
}

// ProviderAvailability counts search providers. Missing counts decode as zero.
type ProviderAvailability struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// Online reports whether the service declares itself serviceable.
func (s SystemStatus) Online() bool {
	return s.Status == StatusProduction || s.Status == StatusDevelopment
}

// OfflineStatus is the status shown when the remote query fails.
func OfflineStatus() SystemStatus {
	return SystemStatus{Status: StatusError}
}

// Ratio renders search provider availability as "available/total".
func (s SystemStatus) Ratio() string {
	p := s.Services.SearchProviders
	return fmt.Sprintf("%d/%d", p.Available, p.Total)
}
