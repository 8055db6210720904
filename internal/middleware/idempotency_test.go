package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, status int) (http.Handler, *miniredis.Miniredis, *int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var calls int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"call":%d}`, n)
	})
	return Idempotency(rdb, "emi:idem:", time.Hour)(next), mr, &calls
}

func do(h http.Handler, method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/payments", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	h, _, calls := setup(t, http.StatusOK)

	first := do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)
	second := do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Empty(t, first.Header().Get(ReplayedHeader))
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	h, _, calls := setup(t, http.StatusOK)

	do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)
	w := do(h, http.MethodPost, "pay-1", `{"amount":"200"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	h, mr, calls := setup(t, http.StatusOK)

	// a first request that has not finished yet
	require.NoError(t, mr.Set("emi:idem:post:/api/payments:pay-1", `{"in_progress":true}`))

	w := do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	h, mr, calls := setup(t, http.StatusInternalServerError)

	do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)
	assert.False(t, mr.Exists("emi:idem:post:/api/payments:pay-1"))

	do(h, http.MethodPost, "pay-1", `{"amount":"100"}`)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_StoresWithTTL(t *testing.T) {
	h, mr, _ := setup(t, http.StatusOK)

	do(h, http.MethodPost, "pay-1", `{}`)

	assert.Equal(t, time.Hour, mr.TTL("emi:idem:post:/api/payments:pay-1"))
}

func TestIdempotency_PassThrough(t *testing.T) {
	h, _, calls := setup(t, http.StatusOK)

	do(h, http.MethodPost, "", `{}`)
	do(h, http.MethodPost, "", `{}`)
	do(h, http.MethodGet, "pay-1", "")
	do(h, http.MethodGet, "pay-1", "")

	assert.Equal(t, int32(4), atomic.LoadInt32(calls))
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	h, mr, calls := setup(t, http.StatusOK)
	mr.Close()

	w := do(h, http.MethodPost, "pay-1", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Zero(t, atomic.LoadInt32(calls))
}
