package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"
)

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
}

type cronResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	PaymentsExecuted *int     `json:"paymentsExecuted,omitempty"`
	PricesUpdated    *int     `json:"pricesUpdated,omitempty"`
	Errors           []string `json:"errors"`
	Timestamp        string   `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cronAuth requires "Authorization: Bearer <CRON_SECRET>".
// With no secret configured every request is rejected.
func (s *Server) cronAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := "Bearer " + s.cronSecret
		got := r.Header.Get("Authorization")
		if s.cronSecret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			s.log.Warn().Str("path", r.URL.Path).Msg("Unauthorized cron request attempt")
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleExecutePaymentRules(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Msg("Starting scheduled payment rule execution")

	result, err := s.rules.ExecuteDueRules(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Payment rule execution failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Timestamp: s.timestamp()})
		return
	}

	message := result.Message("Executed", "payments")
	s.log.Info().Msg(message)

	executed := result.Succeeded
	s.writeJSON(w, http.StatusOK, cronResponse{
		Success:          true,
		Message:          message,
		PaymentsExecuted: &executed,
		Errors:           nonNil(result.Errors),
		Timestamp:        s.timestamp(),
	})
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Msg("Starting scheduled price refresh")

	result, err := s.prices.RefreshAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Price refresh failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Timestamp: s.timestamp()})
		return
	}

	message := result.Message("Updated", "prices")
	s.log.Info().Msg(message)

	updated := result.Succeeded
	s.writeJSON(w, http.StatusOK, cronResponse{
		Success:       true,
		Message:       message,
		PricesUpdated: &updated,
		Errors:        nonNil(result.Errors),
		Timestamp:     s.timestamp(),
	})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
