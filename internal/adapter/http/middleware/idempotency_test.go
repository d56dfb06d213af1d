package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	data     map[string][]byte
	err      error
	released []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string][]byte{}}
}

func (s *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if s.err != nil {
		return false, nil, s.err
	}
	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	if response == nil {
		response = []byte(pendingMarker)
	}
	s.data[key] = response
	return false, nil, nil
}

func (s *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.data[key] = response
	return nil
}

func (s *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	delete(s.data, key)
	s.released = append(s.released, key)
	return nil
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_ReplaysFirstSuccess(t *testing.T) {
	store := newFakeIdempotencyStore()
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	first := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(first, postWithKey("k1"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(second, postWithKey("k1"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayHeader))
	assert.JSONEq(t, `{"id":1}`, second.Body.String())

	var stored storedResponse
	require.NoError(t, json.Unmarshal(store.data["k1"], &stored))
	assert.Equal(t, http.StatusCreated, stored.Status)
}

func TestIdempotencyMiddleware_ReleasesOnFailure(t *testing.T) {
	store := newFakeIdempotencyStore()
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	rec := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusBadRequest, "bad")
	})).ServeHTTP(rec, postWithKey("k2"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"k2"}, store.released)
	assert.NotContains(t, store.data, "k2")
}

func TestIdempotencyMiddleware_PendingConflict(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.data["k3"] = []byte(pendingMarker)
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	rec := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run while the key is pending")
	})).ServeHTTP(rec, postWithKey("k3"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotencyMiddleware_StoreErrorGoesToErrorHandler(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.err = context.DeadlineExceeded
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	called := false
	rec := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, postWithKey("k4"))

	assert.False(t, called, "handler should not be called when store errors")
	assert.ErrorIs(t, errHandled, context.DeadlineExceeded)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIdempotencyMiddleware_SkipsWithoutKeyOrForGet(t *testing.T) {
	store := newFakeIdempotencyStore()
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })

	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/transactions", nil))

	get := httptest.NewRequest(http.MethodGet, "/api/transactions/u1", nil)
	get.Header.Set(IdempotencyKeyHeader, "k5")
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), get)

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := newFakeIdempotencyStore()
	var errHandled error
	mw := NewIdempotencyMiddleware(store, errorHandlerSpy(&errHandled))

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	assert.PanicsWithValue(t, "handler exploded", func() {
		mw.Wrap(panicking).ServeHTTP(httptest.NewRecorder(), postWithKey("k-panic"))
	})
	assert.Equal(t, []string{"k-panic"}, store.released)

	// a retry with the same key runs the handler instead of getting 409
	calls := 0
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	mw.Wrap(ok).ServeHTTP(rec, postWithKey("k-panic"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
