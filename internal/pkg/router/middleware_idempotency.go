package router

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
)

// HeaderIdempotencyKey carries the client chosen key for a retryable request.
const HeaderIdempotencyKey = "Idempotency-Key"

const idempotencyLockDuration = 30 * time.Second

type codeCapture struct {
	http.ResponseWriter
	status int
}

func (c *codeCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *codeCapture) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.ResponseWriter.Write(p)
}

func (c *codeCapture) SetError(err error) {
	if setter, ok := c.ResponseWriter.(interface{ SetError(error) }); ok {
		setter.SetError(err)
	}
}

// Idempotent rejects a repeated request carrying the same Idempotency-Key and
// the same body. Reusing a key with a different body is a new request.
//
// Requests without the header pass through. A 2xx response marks the key
// completed for ttl; any other outcome releases it so the client may retry.
// When the tracker is unreachable the request proceeds without protection.
func Idempotent(idem idempotency.Idempotency, ttl time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if idem == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := normalizeCID(r.Header.Get(HeaderIdempotencyKey))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			digest, err := bodyDigest(r)
			if err != nil {
				slog.WarnContext(ctx, "failed to read body for idempotency key", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			scoped := fmt.Sprintf("%s:%s:%s:%016x", r.Method, matchedRoutePath(r), key, digest)

			state, err := idem.Acquire(ctx, scoped, idempotencyLockDuration)
			if err != nil {
				slog.WarnContext(ctx, "idempotency tracker unavailable", "key", scoped, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			switch state {
			case idempotency.StateInProgress:
				writeJSON(w, errorResponse{Message: "Request with this idempotency key is in progress"}, http.StatusConflict)
				return
			case idempotency.StateCompleted:
				writeJSON(w, errorResponse{Message: "Request with this idempotency key was already processed"}, http.StatusConflict)
				return
			}

			rec := &codeCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				if err := idem.MarkCompleted(ctx, scoped, ttl); err != nil {
					slog.WarnContext(ctx, "failed to mark idempotency key completed", "key", scoped, "error", err)
				}
				return
			}

			if err := idem.Release(ctx, scoped); err != nil {
				slog.WarnContext(ctx, "failed to release idempotency key", "key", scoped, "error", err)
			}
		})
	}
}

// bodyDigest hashes the first maxBodyBytes of the body and leaves r.Body
// readable from the start.
func bodyDigest(r *http.Request) (uint64, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return xxhash.Sum64(nil), nil
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return 0, err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	return xxhash.Sum64(head), nil
}
