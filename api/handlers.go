package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/internal/compare"
	"github.com/seenimoa/indexadvisor/internal/store"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"indices": len(s.adv.IndexIDs()),
		},
	})
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	out := make([]models.IndexProfile, 0)
	for _, id := range s.adv.IndexIDs() {
		p := models.IndexProfile{ID: id}
		if s.cfg != nil {
			if cp, ok := s.cfg.Indices[id]; ok {
				p = cp
				p.ID = id
			}
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

// GET /api/v1/evaluate/{index}?risk=moderate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	risk, ok := s.riskParam(w, r)
	if !ok {
		return
	}
	id := strings.ToUpper(chi.URLParam(r, "index"))

	rec, err := s.adv.Evaluate(r.Context(), id, risk)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

// GET /api/v1/evaluate?risk=moderate&index=SP500,CW8
func (s *Server) handleEvaluateAll(w http.ResponseWriter, r *http.Request) {
	risk, ok := s.riskParam(w, r)
	if !ok {
		return
	}
	b, err := s.adv.EvaluateAll(r.Context(), indexParam(r), risk)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newBatchResponse(b)})
}

// GET /api/v1/compare?risk=moderate&index=SP500,CW8
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	risk, ok := s.riskParam(w, r)
	if !ok {
		return
	}
	b, err := s.adv.EvaluateAll(r.Context(), indexParam(r), risk)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	res, err := s.adv.Compare(b.Recommendations)
	if err != nil {
		writeJSON(w, statusFor(err), APIResponse{Success: false, Error: err.Error(), Data: newBatchResponse(b)})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CompareResponse{BatchResponse: newBatchResponse(b), Comparison: res},
	})
}

// GET /api/v1/recommendations?run_id=&index=&limit=
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "recommendation log not configured")
		return
	}
	q := r.URL.Query()
	f := store.RecommendationFilter{
		RunID:   q.Get("run_id"),
		IndexID: strings.ToUpper(q.Get("index")),
		Limit:   50,
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}
	recs, err := s.history.Recommendations(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recs})
}

// GET /api/v1/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "store not configured")
		return
	}
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

// ── Request parsing ──

// riskParam reads ?risk=, falling back to the configured default. It writes
// a 400 and returns false when the value is unknown.
func (s *Server) riskParam(w http.ResponseWriter, r *http.Request) (models.RiskTolerance, bool) {
	raw := r.URL.Query().Get("risk")
	if raw == "" {
		if s.cfg != nil {
			return s.cfg.DefaultRisk(), true
		}
		return models.RiskModerate, true
	}
	risk, err := models.ParseRiskTolerance(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return risk, true
}

// indexParam collects ?index= values, comma separated or repeated.
func indexParam(r *http.Request) []string {
	var ids []string
	for _, v := range r.URL.Query()["index"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, strings.ToUpper(id))
			}
		}
	}
	return ids
}

// statusFor maps evaluation errors to HTTP status codes. Anything else is
// an upstream data failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, advisor.ErrUnknownIndex):
		return http.StatusNotFound
	case errors.Is(err, compare.ErrNotEnoughRecommendations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
