package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"bilancio/internal/forecast"
	"bilancio/internal/log"
)

// forecastFor computes (or serves from cache) the full forecast for
// the requested date.
func (s *Server) forecastFor(r *http.Request) (forecast.PredictionResult, error) {
	now, err := parseAsOf(r)
	if err != nil {
		return forecast.PredictionResult{}, err
	}

	key := fmt.Sprintf("forecast:%s", now.Format("2006-01-02"))
	if cached, ok := s.forecastCache.Get(key); ok {
		return cached, nil
	}

	result, err := s.predictor.Predict(r.Context(), now)
	if err != nil {
		return forecast.PredictionResult{}, err
	}
	s.forecastCache.Set(key, result)
	return result, nil
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := s.forecastFor(r)
	if err != nil {
		s.writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := s.forecastFor(r)
	if err != nil {
		s.writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"year":       result.Year,
		"month":      result.Month,
		"projection": result.Projection,
	})
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := s.forecastFor(r)
	if err != nil {
		s.writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"recurring":             result.Recurring,
		"pendingRecurring":      result.Pending,
		"pendingRecurringTotal": result.PendingRecurringAmount,
	})
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := s.forecastFor(r)
	if err != nil {
		s.writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result.Pattern)
}

// AccountPayoff is the payoff outcome for one credit account.
type AccountPayoff struct {
	AccountID      string                    `json:"accountId"`
	Principal      float64                   `json:"principal"`
	MonthlyPayment float64                   `json:"monthlyPayment"`
	Result         forecast.DebtPayoffResult `json:"result"`
}

// DebtPayoffResponse is the payload of the debt payoff endpoint.
type DebtPayoffResponse struct {
	AnnualRatePercent float64                   `json:"annualRatePercent"`
	Accounts          []AccountPayoff           `json:"accounts,omitempty"`
	Combined          forecast.DebtPayoffResult `json:"combined"`
}

// handleDebtPayoff simulates debt amortization. With an explicit
// principal parameter it runs one schedule; without it the monthly
// payment is split across the ledger's credit accounts in proportion
// to their debt.
func (s *Server) handleDebtPayoff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payment, err := parseFloatParam(r, "payment", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if payment <= 0 {
		writeError(w, r, http.StatusBadRequest, "payment must be a positive number")
		return
	}
	annualRate, err := parseFloatParam(r, "annual_rate", s.annualRate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if annualRate < 0 {
		writeError(w, r, http.StatusBadRequest, "annual_rate must not be negative")
		return
	}
	principal, err := parseFloatParam(r, "principal", -1)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	monthlyRate := forecast.MonthlyRate(annualRate)
	resp := DebtPayoffResponse{AnnualRatePercent: annualRate}

	if principal >= 0 {
		resp.Combined = forecast.PayoffSchedule(principal, payment, monthlyRate)
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	accounts, err := s.ledger.CreditAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Credit accounts read failed", log.FieldError, err)
		writeError(w, r, http.StatusBadGateway, "ledger unavailable")
		return
	}

	totalDebt := 0.0
	for _, a := range accounts {
		totalDebt += a.Debt()
	}
	if totalDebt == 0 {
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	var payments []forecast.DebtPayment
	for _, a := range accounts {
		debt := a.Debt()
		if debt == 0 {
			continue
		}
		p := forecast.DebtPayment{
			Principal:      debt,
			MonthlyPayment: payment * debt / totalDebt,
			MonthlyRate:    monthlyRate,
		}
		payments = append(payments, p)
		resp.Accounts = append(resp.Accounts, AccountPayoff{
			AccountID:      a.ID,
			Principal:      p.Principal,
			MonthlyPayment: p.MonthlyPayment,
			Result:         forecast.PayoffSchedule(p.Principal, p.MonthlyPayment, p.MonthlyRate),
		})
	}
	resp.Combined = forecast.AggregatePayoff(payments)

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) writeForecastError(w http.ResponseWriter, r *http.Request, err error) {
	if _, parseErr := parseAsOf(r); parseErr != nil {
		writeError(w, r, http.StatusBadRequest, parseErr.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Forecast failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusBadGateway, "forecast unavailable")
}
