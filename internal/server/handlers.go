package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/agbru/fieldfmt/internal/config"
	"github.com/agbru/fieldfmt/internal/dom"
	"github.com/agbru/fieldfmt/internal/engine"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/format"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
	"github.com/agbru/fieldfmt/internal/metrics"
)

// valueResponse is the body of the formatting endpoints.
type valueResponse struct {
	Result string `json:"result"`
}

// errorResponse is the body of every error response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", err)
	}
}

// writeError maps err to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr apperrors.ValidationError
		configErr     apperrors.ConfigError
		tooLarge      *http.MaxBytesError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr), errors.As(err, &configErr):
		status = http.StatusBadRequest
	case apperrors.IsContextError(err):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	return false
}

// handlePrice serves GET /api/price?value=&delimiter=.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	delimiter := s.cfg.PriceDelimiter
	if q.Has("delimiter") {
		delimiter = q.Get("delimiter")
	}
	s.writeJSON(w, http.StatusOK, valueResponse{Result: format.Price(q.Get("value"), format.WithDelimiter(delimiter))})
}

// handleBytes serves GET /api/bytes?value=&fraction=&rounding=.
func (s *Server) handleBytes(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	n, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		s.writeError(w, apperrors.ValidationError{Field: "value", Message: "must be a number"})
		return
	}
	fraction := s.cfg.Fraction
	if q.Has("fraction") {
		fraction, err = strconv.Atoi(q.Get("fraction"))
		if err != nil || fraction < 0 || fraction > config.MaxFraction {
			s.writeError(w, apperrors.ValidationError{Field: "fraction", Message: fmt.Sprintf("must be an integer between 0 and %d", config.MaxFraction)})
			return
		}
	}
	rounding := s.cfg.RoundingMode()
	if q.Has("rounding") {
		if rounding, err = format.ParseRounding(q.Get("rounding")); err != nil {
			s.writeError(w, err)
			return
		}
	}

	result, err := format.Bytes(n, format.WithFraction(fraction), format.WithRounding(rounding))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, valueResponse{Result: result})
}

// handleDefaults serves GET /api/defaults[?mode=].
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodGet) {
		return
	}
	if name := r.URL.Query().Get("mode"); name != "" {
		m, err := mask.ParseMode(name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, mask.Defaults(m))
		return
	}
	all := make(map[string]mask.Config, len(mask.Modes()))
	for _, m := range mask.Modes() {
		all[m.String()] = mask.Defaults(m)
	}
	s.writeJSON(w, http.StatusOK, all)
}

// handleMask serves POST /api/mask. The body is an HTML document or
// fragment. With a selector and mode in the query, that single rule is
// applied with the query overrides; otherwise the built-in data-format rules
// are. The annotated HTML is returned.
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethods(w, r, http.MethodPost) {
		return
	}

	rules, err := rulesFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := dom.Load(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	masker := mask.NewMasker(engine.NewAttrEngine(), mask.WithLogger(s.logger))
	results, err := masker.ApplyRules(r.Context(), doc, rules)

	var applied, skipped, failed int
	for _, res := range results {
		s.metrics.RecordMask(res)
		applied += res.Applied()
		skipped += res.Skipped
		failed += res.Failed
	}
	if err != nil {
		var maskErr apperrors.MaskError
		if !errors.As(err, &maskErr) || failed == 0 {
			s.writeError(w, err)
			return
		}
		s.logger.Info("some fields could not be masked", logging.Int("failed", failed))
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Mask-Applied", strconv.Itoa(applied))
	h.Set("X-Mask-Skipped", strconv.Itoa(skipped))
	h.Set("X-Mask-Failed", strconv.Itoa(failed))
	w.WriteHeader(http.StatusOK)
	if err := doc.Render(w); err != nil {
		s.logger.Error("failed to render document", err)
	}
}

// healthResponse is the body of /health.
type healthResponse struct {
	Status string               `json:"status"`
	Memory metrics.MemoryReport `json:"memory"`
}

// handleHealth reports liveness and the memory use of the process.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Memory: s.memory.Snapshot().Report(),
	})
}
