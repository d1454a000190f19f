package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/adityaaj2003/tunegan/pkg/errors"
)

// requestLogger logs one structured line per request with status, size,
// and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logFn := s.logger.Info
		if ww.Status() >= http.StatusInternalServerError {
			logFn = s.logger.Error
		}
		logFn("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// rateLimiter enforces a fixed-window per-client request budget.
// A limit of 0 disables the check.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
}

type clientWindow struct {
	count int
	reset time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  time.Minute,
		clients: make(map[string]*clientWindow),
	}
}

// allow records one request for the client and reports whether it fits
// in the current window.
func (rl *rateLimiter) allow(client string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, ok := rl.clients[client]
	if !ok || now.After(cw.reset) {
		// Drop expired windows while we hold the lock.
		for k, v := range rl.clients {
			if now.After(v.reset) {
				delete(rl.clients, k)
			}
		}
		rl.clients[client] = &clientWindow{count: 1, reset: now.Add(rl.window)}
		return true
	}
	cw.count++
	return cw.count <= rl.limit
}

// limitGenerate rejects clients over their per-minute generation budget.
// Clients are keyed by IP; RealIP runs earlier in the chain so proxied
// requests use the forwarded address.
func (s *Server) limitGenerate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			s.writeError(w, r, errors.New(errors.ErrCodeRateLimited,
				"generation rate limit exceeded, retry in a minute"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
