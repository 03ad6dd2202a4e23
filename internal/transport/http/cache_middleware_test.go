package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
	"github.com/joshdurbin/js4hs-edge/internal/cache/memory"
	"github.com/joshdurbin/js4hs-edge/internal/cache/mocks"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingHandler writes body with status and counts invocations
type countingHandler struct {
	mu     sync.Mutex
	calls  int
	status int
	body   string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if h.status != 0 {
		w.WriteHeader(h.status)
	}
	_, _ = w.Write([]byte(h.body))
}

func (h *countingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func newJobsRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/jobs?page=1", nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	store := memory.New()
	rc := NewResponseCache(store, WithCacheClock(clock.Now))

	handler := &countingHandler{body: `{"jobs":[]}`}
	h := rc.MustCache(300 * time.Second)(handler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, newJobsRequest())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `{"jobs":[]}`, first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "private, max-age=300", first.Header().Get("Cache-Control"))
	assert.Equal(t, clock.Now().Add(300*time.Second).UTC().Format(http.TimeFormat), first.Header().Get("Expires"))
	assert.Equal(t, "nosniff", first.Header().Get("X-Content-Type-Options"))

	clock.Advance(299 * time.Second)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, newJobsRequest())

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, `{"jobs":[]}`, second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "private, no-store", second.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", second.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, 1, handler.Calls())
}

func TestResponseCache_ExpiredEntryIsMiss(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	rc := NewResponseCache(memory.New(), WithCacheClock(clock.Now))

	handler := &countingHandler{body: `{"jobs":[]}`}
	h := rc.MustCache(300 * time.Second)(handler)

	h.ServeHTTP(httptest.NewRecorder(), newJobsRequest())

	clock.Advance(300 * time.Second)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, newJobsRequest())

	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, 2, handler.Calls())

	// The refreshed entry serves the next request
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, newJobsRequest())
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(t, 2, handler.Calls())
}

func TestResponseCache_AuthorizationNeverCached(t *testing.T) {
	store := memory.New()
	recorder := &mocks.Recorder{}
	recorder.On("Bypass", "authorization").Times(2)

	rc := NewResponseCache(store, WithCacheRecorder(recorder))
	handler := &countingHandler{body: `{"me":"student"}`}
	h := rc.MustCache(time.Minute)(handler)

	for i := 0; i < 2; i++ {
		req := newJobsRequest()
		req.Header.Set("Authorization", "Bearer token")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, `{"me":"student"}`, rr.Body.String())
		assert.Empty(t, rr.Header().Get("X-Cache"))
	}

	assert.Equal(t, 2, handler.Calls())
	assert.Equal(t, 0, store.Len(context.Background()))
	recorder.AssertExpectations(t)
}

// An authorized request must not be answered from entries written by anonymous ones.
func TestResponseCache_AuthorizationSkipsExistingEntry(t *testing.T) {
	rc := NewResponseCache(memory.New())
	handler := &countingHandler{body: `{"jobs":[]}`}
	h := rc.MustCache(time.Minute)(handler)

	h.ServeHTTP(httptest.NewRecorder(), newJobsRequest())

	req := newJobsRequest()
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("X-Cache"))
	assert.Equal(t, 2, handler.Calls())
}

func TestResponseCache_NonOKNeverCached(t *testing.T) {
	statuses := []int{
		http.StatusCreated,
		http.StatusNoContent,
		http.StatusMovedPermanently,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			store := memory.New()
			rc := NewResponseCache(store)
			handler := &countingHandler{status: status, body: "nope"}
			h := rc.MustCache(time.Minute)(handler)

			for i := 0; i < 2; i++ {
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, newJobsRequest())
				assert.Equal(t, status, rr.Code)
				assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
				assert.Empty(t, rr.Header().Get("Expires"))
			}

			assert.Equal(t, 2, handler.Calls())
			assert.Equal(t, 0, store.Len(context.Background()))
		})
	}
}

func TestResponseCache_OnlyGET(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store)
	handler := &countingHandler{body: "ok"}
	h := rc.MustCache(time.Minute)(handler)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/jobs?page=1", nil))
		assert.Empty(t, rr.Header().Get("X-Cache"), method)
	}

	assert.Equal(t, 4, handler.Calls())
	assert.Equal(t, 0, store.Len(context.Background()))
}

func TestResponseCache_Disabled(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store, WithCacheDisabled(true))
	handler := &countingHandler{body: `{"jobs":[]}`}
	h := rc.MustCache(time.Minute)(handler)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, newJobsRequest())
		assert.Equal(t, `{"jobs":[]}`, rr.Body.String())
		assert.Empty(t, rr.Header().Get("X-Cache"))
	}

	assert.Equal(t, 3, handler.Calls())
	assert.Equal(t, 0, store.Len(context.Background()))
}

func TestResponseCache_KeyIncludesNegotiationHeaders(t *testing.T) {
	rc := NewResponseCache(memory.New())
	handler := &countingHandler{body: "x"}
	h := rc.MustCache(time.Minute)(handler)

	h.ServeHTTP(httptest.NewRecorder(), newJobsRequest())

	gz := newJobsRequest()
	gz.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, gz)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	other := httptest.NewRequest(http.MethodGet, "/jobs?page=2", nil)
	other.Header.Set("Accept", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	assert.Equal(t, 3, handler.Calls())
}

func TestResponseCache_StoreErrorIsSwallowed(t *testing.T) {
	store := &mocks.Store{}
	store.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, false)
	store.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*cache.Entry")).
		Return(errors.New("disk full"))

	recorder := &mocks.Recorder{}
	recorder.On("Miss").Once()
	recorder.On("StoreError").Once()

	rc := NewResponseCache(store, WithCacheRecorder(recorder), WithCacheLogger(zerolog.Nop()))
	handler := &countingHandler{body: `{"jobs":[]}`}

	rr := httptest.NewRecorder()
	rc.MustCache(time.Minute)(handler).ServeHTTP(rr, newJobsRequest())

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"jobs":[]}`, rr.Body.String())
	store.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestResponseCache_StoresEntry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := &mocks.Store{}
	store.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, false)
	store.On("Set", mock.Anything, cache.Key(newJobsRequest()), mock.MatchedBy(func(e *cache.Entry) bool {
		return string(e.Body) == `{"jobs":[]}` &&
			e.ContentType == "application/json" &&
			e.ExpiresAt.Equal(now.Add(5*time.Minute))
	})).Return(nil)

	rc := NewResponseCache(store, WithCacheClock(func() time.Time { return now }))
	rc.MustCache(5*time.Minute)(&countingHandler{body: `{"jobs":[]}`}).ServeHTTP(httptest.NewRecorder(), newJobsRequest())

	store.AssertExpectations(t)
}

func TestResponseCache_AbortedRequestNotStored(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store)

	ctx, cancel := context.WithCancel(context.Background())
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("partial"))
		cancel()
	})

	req := newJobsRequest().WithContext(ctx)
	rc.MustCache(time.Minute)(handler).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 0, store.Len(context.Background()))
}

func TestResponseCache_ZeroTTLStoresNothing(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store)
	handler := &countingHandler{body: "x"}
	h := rc.MustCache(0)(handler)

	h.ServeHTTP(httptest.NewRecorder(), newJobsRequest())
	h.ServeHTTP(httptest.NewRecorder(), newJobsRequest())

	assert.Equal(t, 2, handler.Calls())
	assert.Equal(t, 0, store.Len(context.Background()))
}

func TestResponseCache_InvalidTTL(t *testing.T) {
	rc := NewResponseCache(memory.New())

	for _, ttl := range []time.Duration{-time.Second, 1500 * time.Millisecond, time.Nanosecond} {
		mw, err := rc.Cache(ttl)
		assert.Nil(t, mw)
		assert.True(t, errors.Is(err, cache.ErrInvalidTTL), "ttl=%s", ttl)
	}

	assert.Panics(t, func() { rc.MustCache(-time.Minute) })
	assert.NotPanics(t, func() { rc.MustCache(24 * time.Hour) })
}

func TestResponseCache_ImplicitOK(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store)
	h := rc.MustCache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, newJobsRequest())

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, 1, store.Len(context.Background()))
}

func TestResponseCache_ConcurrentRequests(t *testing.T) {
	store := memory.New()
	rc := NewResponseCache(store)
	handler := &countingHandler{body: `{"jobs":[]}`}
	h := rc.MustCache(time.Minute)(handler)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, newJobsRequest())
			assert.Equal(t, `{"jobs":[]}`, rr.Body.String())
		}()
	}
	wg.Wait()

	require.Equal(t, 1, store.Len(context.Background()))
	assert.GreaterOrEqual(t, handler.Calls(), 1)
}
