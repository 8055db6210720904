package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	// how long a request may hold its key before it must have finished
	provisionalTTL = 60 * time.Second
	maxKeyLength   = 128
)

type idempotencyEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type captureWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *captureWriter) WriteHeader(statusCode int) {
	c.code = statusCode
	c.ResponseWriter.WriteHeader(statusCode)
}

// Idempotency replays the stored response of a write that carried the same
// Idempotency-Key and body. Requests without the header pass through.
// Reusing a key with a different body, or while the first request is still
// running, answers 409. Server errors are not stored so the client can retry.
func Idempotency(rdb redis.Cmdable, prefix string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxKeyLength {
				response.BadRequest(w, "Idempotency-Key is too long")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				response.BadRequest(w, "Invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := prefix + strings.ToLower(r.Method) + ":" + r.URL.Path + ":" + idemKey
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempotencyEntry{
				InProgress: true,
				BodySHA256: hash,
				CreatedAt:  time.Now().UTC(),
			})
			if err != nil {
				slog.ErrorContext(r.Context(), "idempotency store unavailable", "key", key, "error", err)
				response.Error(w, http.StatusServiceUnavailable, "idempotency store unavailable", "")
				return
			}
			if !ok {
				cur, err := loadEntry(ctx, rdb, key)
				if err != nil {
					slog.WarnContext(r.Context(), "loading idempotency entry", "key", key, "error", err)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
					response.Error(w, http.StatusConflict, "Idempotency-Key reused with a different body", "IDEMPOTENCY_KEY_REUSED")
					return
				}
				if !cur.InProgress && cur.Code != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set(ReplayedHeader, "true")
					w.WriteHeader(cur.Code)
					_, _ = w.Write(cur.Body)
					return
				}
				response.Error(w, http.StatusConflict, "request is already in progress", "REQUEST_IN_PROGRESS")
				return
			}

			rec := &captureWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			// the request context may be gone by now
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer saveCancel()

			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(saveCtx, key).Err(); err != nil {
					slog.WarnContext(r.Context(), "releasing idempotency key", "key", key, "error", err)
				}
				return
			}

			final := idempotencyEntry{
				Code:       rec.code,
				Body:       rec.buf.Bytes(),
				BodySHA256: hash,
				CreatedAt:  time.Now().UTC(),
			}
			if err := saveEntry(saveCtx, rdb, key, final, ttl); err != nil {
				slog.WarnContext(r.Context(), "saving idempotency entry", "key", key, "error", err)
			}
		})
	}
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func provisionalSet(ctx context.Context, rdb redis.Cmdable, key string, entry idempotencyEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalTTL).Result()
}

func loadEntry(ctx context.Context, rdb redis.Cmdable, key string) (idempotencyEntry, error) {
	var e idempotencyEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

func saveEntry(ctx context.Context, rdb redis.Cmdable, key string, entry idempotencyEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
