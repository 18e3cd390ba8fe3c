package cache

import (
	"bytes"
	"net/http"
	"time"
)

const HeaderCache = "X-Cache"

// captureWriter tees the response body so it can be stored after the
// handler returns.
type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves GET requests from the cache and stores successful
// responses. Only status 200 is cached. ownerOf resolves the namespace of a
// request; an empty owner maps to the anonymous namespace.
func (c *ResponseCache) Middleware(ownerOf func(*http.Request) string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || c.Bypass(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			owner := ownerOf(r)
			key := Key(owner, r.Method, r.URL.RequestURI())

			if e, ok := c.Get(owner, key); ok {
				if e.ContentType != "" {
					w.Header().Set("Content-Type", e.ContentType)
				}
				w.Header().Set(HeaderCache, "HIT")
				w.WriteHeader(e.StatusCode)
				_, _ = w.Write(e.Body)
				return
			}

			gen := c.Generation(owner)
			w.Header().Set(HeaderCache, "MISS")
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if cw.status != http.StatusOK {
				return
			}
			c.Set(owner, key, gen, Entry{
				StatusCode:  cw.status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        bytes.Clone(cw.body.Bytes()),
			}, ttl)
		})
	}
}
