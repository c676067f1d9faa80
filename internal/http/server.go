package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"melodi/internal/app"
	"melodi/internal/cache"
	"melodi/internal/log"
)

// Options configure NewServer.
type Options struct {
	// RateLimitPerMinute bounds mutating requests per client IP.
	RateLimitPerMinute int
	Logger             *log.Logger
}

// Server serves the tracker API.
type Server struct {
	http.Server
	app         *app.App
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	replays     cache.Cache[replay]
	caches      *cache.Manager
	log         *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, a *app.App, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}

	replays := newReplayCache()
	caches := cache.NewManager(logger.Logger)
	caches.Register(replays)
	caches.StartCleanup(5 * time.Minute)

	s := &Server{
		app:         a,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     &securityMetrics{},
		replays:     replays,
		caches:      caches,
		log:         logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/state", s.handleState)

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/totals", s.handleTotals)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/progress", s.handleTaskProgress)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/habits", s.handleListHabits)
	mux.HandleFunc("POST /api/habits", s.handleCreateHabit)
	mux.HandleFunc("POST /api/habits/reset", s.handleResetHabits)
	mux.HandleFunc("DELETE /api/habits/{id}", s.handleDeleteHabit)
	mux.HandleFunc("GET /api/habits/{id}/transition", s.handleHabitTransition)
	mux.HandleFunc("POST /api/habits/{id}/toggle", s.handleToggleHabit)

	mux.HandleFunc("GET /api/habit-logs", s.handleListHabitLogs)
	mux.HandleFunc("DELETE /api/habit-logs/{id}", s.handleDeleteHabitLog)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the background cleanups and gracefully shuts down the
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware tags each request with an id and a request-scoped logger,
// rate limits mutating methods and replays retried ones, sets security
// headers and logs completion.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	inner := log.Middleware(s.log, func(r *http.Request) string {
		return r.Header.Get("X-Request-ID")
	})(s.withIdempotency(next))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
			r.Header.Set("X-Request-ID", requestID)
		}
		w.Header().Set("X-Request-ID", requestID)

		if detectSuspiciousRequest(r, s.metrics) {
			s.log.WarnContext(r.Context(), "Suspicious request",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			retry := s.rateLimiter.retryAfter(clientIP)
			ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded").
				Header("Retry-After", strconv.Itoa(retry)).
				Write(rw)
		} else {
			inner.ServeHTTP(rw, r)
		}

		ctx := log.NewContext(r.Context(), s.log.With(log.FieldRequestID, requestID))
		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
