package api

import (
	"net/http"

	"github.com/seenimoa/indexadvisor/internal/config"
	"github.com/seenimoa/indexadvisor/internal/decision"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ConfigResponse is the JSON body returned by GET /api/v1/config. Secrets
// are never included.
type ConfigResponse struct {
	BaseCurrency string                                       `json:"base_currency"`
	DefaultRisk  models.RiskTolerance                         `json:"default_risk"`
	Indices      map[string]models.IndexProfile               `json:"indices"`
	Regions      map[string]models.Region                     `json:"regions"`
	Thresholds   map[models.RiskTolerance]decision.Thresholds `json:"thresholds"`
	ConfigFile   string                                       `json:"config_file,omitempty"`
}

// handleGetConfig returns the running configuration relevant to callers.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotImplemented, "configuration not available")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			BaseCurrency: s.cfg.Investor.BaseCurrency,
			DefaultRisk:  s.cfg.DefaultRisk(),
			Indices:      s.cfg.Indices,
			Regions:      s.cfg.Regions,
			Thresholds:   s.cfg.Analysis.Decision.Profiles,
			ConfigFile:   s.cfg.File,
		},
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotImplemented, "configuration not available")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
