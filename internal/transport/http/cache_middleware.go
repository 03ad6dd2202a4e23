package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
)

// Bypass reasons reported to the cache recorder
const (
	bypassMethod        = "method"
	bypassDisabled      = "disabled"
	bypassAuthorization = "authorization"
)

// ResponseCache builds middleware that serves repeated GET requests from a Store
type ResponseCache struct {
	store    cache.Store
	logger   zerolog.Logger
	recorder cache.Recorder
	now      func() time.Time
	disabled bool
}

// ResponseCacheOption configures a ResponseCache
type ResponseCacheOption func(*ResponseCache)

// WithCacheClock overrides the time source used for expiry
func WithCacheClock(now func() time.Time) ResponseCacheOption {
	return func(c *ResponseCache) { c.now = now }
}

// WithCacheDisabled turns every request into a pass-through
func WithCacheDisabled(disabled bool) ResponseCacheOption {
	return func(c *ResponseCache) { c.disabled = disabled }
}

// WithCacheRecorder reports hits, misses and failures to recorder
func WithCacheRecorder(recorder cache.Recorder) ResponseCacheOption {
	return func(c *ResponseCache) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithCacheLogger sets the fallback logger for requests without one in their context
func WithCacheLogger(logger zerolog.Logger) ResponseCacheOption {
	return func(c *ResponseCache) { c.logger = logger }
}

// NewResponseCache creates a ResponseCache backed by store
func NewResponseCache(store cache.Store, opts ...ResponseCacheOption) *ResponseCache {
	c := &ResponseCache{
		store:    store,
		logger:   zerolog.Nop(),
		recorder: cache.NopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns middleware caching successful GET responses for ttl.
// ttl must be non-negative and a whole number of seconds; zero stores nothing.
func (c *ResponseCache) Cache(ttl time.Duration) (func(http.Handler) http.Handler, error) {
	if ttl < 0 || ttl%time.Second != 0 {
		return nil, fmt.Errorf("%w: got %s", cache.ErrInvalidTTL, ttl)
	}

	maxAge := strconv.FormatInt(int64(ttl/time.Second), 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reason, bypass := c.bypass(r); bypass {
				c.recorder.Bypass(reason)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-Content-Type-Options", "nosniff")

			key := cache.Key(r)
			now := c.now()

			if entry, ok := c.store.Get(r.Context(), key); ok && entry.Fresh(now) {
				c.recorder.Hit()
				c.serve(w, r, entry)
				return
			}
			c.recorder.Miss()

			expiresAt := now.Add(ttl)
			cw := &captureResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				maxAge:         maxAge,
				expires:        expiresAt,
			}
			next.ServeHTTP(cw, r)
			if !cw.wroteHeader {
				cw.WriteHeader(http.StatusOK)
			}

			// Nothing is stored for aborted requests or bodies the client never received.
			if ttl == 0 || cw.statusCode != http.StatusOK || cw.writeErr != nil || r.Context().Err() != nil {
				return
			}

			entry := &cache.Entry{
				Body:        cw.body.Bytes(),
				ContentType: w.Header().Get("Content-Type"),
				StoredAt:    now,
				ExpiresAt:   expiresAt,
			}
			if err := c.store.Set(r.Context(), key, entry); err != nil {
				c.recorder.StoreError()
				c.log(r).Warn().Err(err).Str("path", r.URL.Path).Msg("failed to store cached response")
			}
		})
	}, nil
}

// MustCache is like Cache but panics on an invalid ttl.
// Intended for router construction.
func (c *ResponseCache) MustCache(ttl time.Duration) func(http.Handler) http.Handler {
	mw, err := c.Cache(ttl)
	if err != nil {
		panic(err)
	}
	return mw
}

func (c *ResponseCache) bypass(r *http.Request) (string, bool) {
	switch {
	case r.Method != http.MethodGet:
		return bypassMethod, true
	case c.disabled:
		return bypassDisabled, true
	case r.Header.Get("Authorization") != "":
		return bypassAuthorization, true
	}
	return "", false
}

func (c *ResponseCache) serve(w http.ResponseWriter, r *http.Request, entry *cache.Entry) {
	h := w.Header()
	if entry.ContentType != "" {
		h.Set("Content-Type", entry.ContentType)
	}
	h.Set("X-Cache", "HIT")
	h.Set("Cache-Control", "private, no-store")
	h.Set("Content-Length", strconv.Itoa(len(entry.Body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(entry.Body); err != nil {
		c.log(r).Debug().Err(err).Msg("failed to write cached response")
	}
}

func (c *ResponseCache) log(r *http.Request) *zerolog.Logger {
	if l := hlog.FromRequest(r); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &c.logger
}

// captureResponseWriter annotates and records a response as it is sent
type captureResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
	writeErr    error
	maxAge      string
	expires     time.Time
}

func (cw *captureResponseWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true
	cw.statusCode = code

	h := cw.ResponseWriter.Header()
	h.Set("X-Cache", "MISS")
	if code == http.StatusOK {
		h.Set("Cache-Control", "private, max-age="+cw.maxAge)
		h.Set("Expires", cw.expires.UTC().Format(http.TimeFormat))
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureResponseWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.statusCode == http.StatusOK {
		cw.body.Write(b)
	}
	n, err := cw.ResponseWriter.Write(b)
	if err != nil && cw.writeErr == nil {
		cw.writeErr = err
	}
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (cw *captureResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
