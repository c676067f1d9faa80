package http

import (
	"bytes"
	"net/http"
	"time"

	"melodi/internal/cache"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	replayTTL         = 10 * time.Minute
	maxReplays        = 500
)

// replay is the stored response to a mutating request that carried an
// Idempotency-Key.
type replay struct {
	status      int
	contentType string
	body        []byte
}

func newReplayCache() *cache.LRUCache[replay] {
	return cache.NewLRUCache[replay](maxReplays, replayTTL)
}

// withIdempotency answers a retried mutating request from the cache instead
// of applying it twice. Keys are scoped by client, method and path. Server
// errors are not stored so the client can retry them.
func (s *Server) withIdempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyHeader)
		if key == "" || !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		ck := extractClientIP(r) + " " + r.Method + " " + r.URL.Path + " " + key

		if rep, ok := s.replays.Get(ck); ok {
			if rep.contentType != "" {
				w.Header().Set("Content-Type", rep.contentType)
			}
			w.Header().Set(replayedHeader, "true")
			w.WriteHeader(rep.status)
			_, _ = w.Write(rep.body)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status < http.StatusInternalServerError {
			s.replays.Set(ck, replay{
				status:      rec.status,
				contentType: rec.Header().Get("Content-Type"),
				body:        rec.body.Bytes(),
			})
		}
	})
}

// recordingWriter copies the response while it is written.
type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
