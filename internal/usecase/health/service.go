// Package health reports process liveness.
package health

// Report is the liveness payload.
type Report struct {
	Status       string `json:"status"`
	ConfigLoaded bool   `json:"config_loaded"`
}

// Service answers health checks. The only component that can degrade at
// startup is configuration loading, which falls back to defaults; the report
// exposes whether the file actually loaded.
type Service struct {
	configLoaded bool
}

// New creates a health service.
func New(configLoaded bool) *Service {
	return &Service{configLoaded: configLoaded}
}

// Check reports liveness.
func (s *Service) Check() Report {
	return Report{Status: "ok", ConfigLoaded: s.configLoaded}
}
