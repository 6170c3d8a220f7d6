package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bargen/bargen-backend/api/responses"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	pkgredis "github.com/bargen/bargen-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"

	fallbackIdempotencyTTL = 24 * time.Hour
	// Delivery orders keep their keys for a week so a late retry never books a
	// second rider.
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	// inFlightTTL bounds how long a claimed key blocks retries if the process
	// dies before recording the outcome.
	inFlightTTL = 30 * time.Second

	maxIdempotentBody = 1 << 20
)

// guardedWrites lists the create endpoints that demand an Idempotency-Key,
// keyed by "METHOD path". The value marks long-lived keys.
var guardedWrites = map[string]bool{
	http.MethodPost + " /api/v1/bargains":        false,
	http.MethodPost + " /api/v1/cart/items":      false,
	http.MethodPost + " /api/v1/messages":        false,
	http.MethodPost + " /api/v1/delivery/orders": true,
}

type entryState string

const (
	statePending  entryState = "pending"
	stateComplete entryState = "complete"
)

// idempotencyEntry is what lives under a key: first a pending claim, then the
// captured response.
type idempotencyEntry struct {
	State       entryState `json:"state"`
	Fingerprint string     `json:"fingerprint"`
	Status      int        `json:"status,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Body        []byte     `json:"body,omitempty"`
}

// Idempotency guards the create endpoints in guardedWrites. The first request
// for a (caller, route, key) claims the key, runs, and stores its response;
// retries with the same body replay it, retries with another body are refused
// and overlapping retries get a conflict until the first one finishes.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := normalizedPath(r.URL.Path)
			keep, guarded := keyLifetime(r.Method, path, ttl)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			fail := func(err error) { responses.WriteError(ctx, logg, w, err) }

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				fail(pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
				return
			}
			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
			if err != nil {
				fail(pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			if len(body) > maxIdempotentBody {
				fail(pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", maxIdempotentBody))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := store.IdempotencyKey(CallerFromContext(ctx).Principal.String()+"|"+r.Method+"|"+path, clientKey)
			fingerprint := fingerprintBody(body)

			claimed, err := claim(ctx, store, key, fingerprint)
			if err != nil {
				fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				prior, err := loadEntry(ctx, store, key)
				switch {
				case err != nil:
					fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency entry"))
				case prior == nil:
					// Claim expired between SetNX and Get; let the client retry.
					fail(pkgerrors.New(pkgerrors.CodeConflict, "request with this "+idempotencyHeader+" is still in progress"))
				case prior.Fingerprint != fingerprint:
					fail(pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
				case prior.State == statePending:
					fail(pkgerrors.New(pkgerrors.CodeConflict, "request with this "+idempotencyHeader+" is still in progress"))
				default:
					if logg != nil {
						logg.Info(logg.WithField(ctx, "route", path), "idempotency.replayed")
					}
					replay(w, prior)
				}
				return
			}

			capture := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			// Release the claim on server errors so a retry runs the handler again.
			persistCtx := context.WithoutCancel(ctx)
			if capture.code() >= http.StatusInternalServerError {
				if err := store.Del(persistCtx, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}
			done := idempotencyEntry{
				State:       stateComplete,
				Fingerprint: fingerprint,
				Status:      capture.code(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.buf.Bytes(),
			}
			if err := saveEntry(persistCtx, store, key, done, keep); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func claim(ctx context.Context, store pkgredis.IdempotencyStore, key, fingerprint string) (bool, error) {
	raw, err := json.Marshal(idempotencyEntry{State: statePending, Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(raw), inFlightTTL)
}

func loadEntry(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*idempotencyEntry, error) {
	raw, err := store.Get(ctx, key)
	if pkgredis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry idempotencyEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func saveEntry(ctx context.Context, store pkgredis.IdempotencyStore, key string, entry idempotencyEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(raw), ttl)
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// normalizedPath drops a trailing slash. Middleware mounted on a sub-router
// only sees a partial chi pattern, so matching runs on the raw path.
func normalizedPath(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

func keyLifetime(method, path string, ttl time.Duration) (time.Duration, bool) {
	critical, ok := guardedWrites[method+" "+path]
	if !ok {
		return 0, false
	}
	if ttl <= 0 {
		ttl = fallbackIdempotencyTTL
	}
	if critical && ttl < criticalIdempotencyTTL {
		return criticalIdempotencyTTL, true
	}
	return ttl, true
}

type capturingWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (c *capturingWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *capturingWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *capturingWriter) code() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
