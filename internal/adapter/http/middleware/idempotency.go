package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
	// DefaultIdempotencyTTL is how long a stored response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour

	maxIdempotentBody = 4 << 20
)

// storedResponse is what is kept under an idempotency key. Fingerprint
// ties the key to the request that first used it.
type storedResponse struct {
	Fingerprint string          `json:"fingerprint"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

// IdempotencyMiddleware makes POST and PUT requests that carry an
// Idempotency-Key safe to retry. The first request with a key runs; a
// repeat gets the stored response, a concurrent repeat gets 409 and a
// repeat with a different method, path or body gets 422. Keys of requests
// that did not succeed are released.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, ttl: DefaultIdempotencyTTL, logger: zerolog.Nop()}
}

// WithTTL sets how long responses are kept.
func (m *IdempotencyMiddleware) WithTTL(ttl time.Duration) *IdempotencyMiddleware {
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

// WithLogger sets the logger used for store failures after the handler ran.
func (m *IdempotencyMiddleware) WithLogger(logger zerolog.Logger) *IdempotencyMiddleware {
	m.logger = logger
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		fp := fingerprint(r, body)

		held, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("idempotency store unavailable")
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}
		if held {
			m.answerRepeat(w, cached, fp)
			return
		}

		m.runOnce(w, r, next, key, fp)
	})
}

func (m *IdempotencyMiddleware) answerRepeat(w http.ResponseWriter, cached []byte, fp string) {
	var stored storedResponse
	if len(cached) == 0 || json.Unmarshal(cached, &stored) != nil || stored.Status == 0 {
		http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
		return
	}
	if stored.Fingerprint != fp {
		http.Error(w, "idempotency key was used for a different request", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

// runOnce serves the first request for key and records its answer. The
// key is released when the handler fails or panics.
func (m *IdempotencyMiddleware) runOnce(w http.ResponseWriter, r *http.Request, next http.Handler, key, fp string) {
	var (
		buf    bytes.Buffer
		stored []byte
	)
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Tee(&buf)

	defer func() {
		// r.Context may already be cancelled; the outcome must still be saved.
		ctx := context.WithoutCancel(r.Context())
		if err := m.store.Update(ctx, key, stored, m.ttl); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	}()

	next.ServeHTTP(ww, r)

	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status > 299 {
		return
	}

	raw, err := json.Marshal(storedResponse{Fingerprint: fp, Status: status, Body: json.RawMessage(buf.Bytes())})
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("response is not replayable")
		return
	}
	stored = raw
}

func fingerprint(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
