// Package http exposes the forecasting engine as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/forecast"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

const forecastCacheTTL = 5 * time.Minute

type Server struct {
	http.Server

	ledger      ledger.Ledger
	predictor   *forecast.Predictor
	annualRate  float64
	rateLimiter *rateLimiter

	// Forecasts are pure functions of the ledger and the date, so a
	// short TTL cache absorbs dashboard polling without staleness
	// concerns beyond the TTL itself.
	forecastCache *cache.LRUCache[forecast.PredictionResult]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, l ledger.Ledger, lookbackMonths int, annualRatePercent float64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        l,
		predictor:     forecast.NewPredictor(l, lookbackMonths),
		annualRate:    annualRatePercent,
		rateLimiter:   newRateLimiter(),
		forecastCache: cache.NewLRUCache[forecast.PredictionResult](100, forecastCacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.forecastCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/forecast", s.withAPIMiddleware(s.handleForecast))
	mux.HandleFunc("/api/forecast/projection", s.withAPIMiddleware(s.handleProjection))
	mux.HandleFunc("/api/forecast/recurring", s.withAPIMiddleware(s.handleRecurring))
	mux.HandleFunc("/api/forecast/pattern", s.withAPIMiddleware(s.handlePattern))
	mux.HandleFunc("/api/debt/payoff", s.withAPIMiddleware(s.handleDebtPayoff))

	return s
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withAPIMiddleware adds request logging, rate limiting and response
// headers around an API handler.
func (s *Server) withAPIMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
