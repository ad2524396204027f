package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai"
)

type HealthResponse struct {
	Status             string                                          `json:"status"`
	Version            string                                          `json:"version,omitempty"`
	LLMConfigured      bool                                            `json:"llm_configured"`
	FallbackConfigured bool                                            `json:"fallback_configured"`
	Persistence        string                                          `json:"persistence"`
	RemoteModules      bool                                            `json:"remote_modules"`
	Sessions           int                                             `json:"sessions"`
	RequestsTotal      int64                                           `json:"requests_total"`
	RequestsFailed     int64                                           `json:"requests_failed"`
	Modules            map[string]*observability.ModuleMetricsSnapshot `json:"modules,omitempty"`
}

// Health reports configuration and counters.
// GET /health
func (s *APIV1Service) Health(c echo.Context) error {
	snap := s.Metrics.Snapshot()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:             "ok",
		Version:            s.Profile.Version,
		LLMConfigured:      s.AIConfig.LLM.Provider != ai.ProviderEcho,
		FallbackConfigured: s.AIConfig.HasFallback(),
		Persistence:        s.Profile.Driver,
		RemoteModules:      s.Remote.Configured(),
		Sessions:           s.Sessions.Len(),
		RequestsTotal:      snap.RequestTotal,
		RequestsFailed:     snap.RequestFailed,
		Modules:            snap.Modules,
	})
}
