package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
)

type errorResponse struct {
	Error   string     `json:"error"`
	RetryAt *time.Time `json:"retry_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNameExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrTooSoon):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	}

	switch common.KindOf(err) {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindAuthentication:
		return http.StatusUnauthorized
	case common.KindConsistency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps err to a status and a public message. Internal
// errors are logged with detail; credential failures are logged with their
// internal reason.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: common.PublicMessage(err)}

	var tooSoon *common.TooSoonError
	if errors.As(err, &tooSoon) {
		at := tooSoon.NextEligible.UTC()
		resp.RetryAt = &at
		w.Header().Set("Retry-After", retryAfter(at.Sub(s.nowFunc())))
	}

	switch common.KindOf(err) {
	case common.KindInternal:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	case common.KindAuthentication:
		s.logger.Info(r.Context(), "request unauthenticated", "path", r.URL.Path, "reason", err)
	}

	writeJSON(w, status, resp)
}

// retryAfter renders d as whole seconds, rounded up, at least one.
func retryAfter(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
