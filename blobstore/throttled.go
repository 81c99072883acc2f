package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore wraps a Store and paces writes to a byte-per-second
// budget, keeping large backups from saturating a shared uplink.
// Reads are not throttled.
type ThrottledStore struct {
	inner   Store
	limiter *rate.Limiter
}

// NewThrottledStore creates a ThrottledStore limited to bytesPerSec for
// writes. bytesPerSec <= 0 means unlimited.
func NewThrottledStore(inner Store, bytesPerSec int64) *ThrottledStore {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
	}
	return &ThrottledStore{inner: inner, limiter: limiter}
}

func (t *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	return t.inner.Open(ctx, name)
}

func (t *ThrottledStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := t.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledWritableBlob{inner: w, limiter: t.limiter, ctx: ctx}, nil
}

func (t *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := waitBytes(ctx, t.limiter, len(data)); err != nil {
		return err
	}
	return t.inner.Put(ctx, name, data)
}

func (t *ThrottledStore) Delete(ctx context.Context, name string) error {
	return t.inner.Delete(ctx, name)
}

func (t *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return t.inner.List(ctx, prefix)
}

// waitBytes reserves n bytes of budget, splitting oversized requests so
// they never exceed the limiter's burst.
func waitBytes(ctx context.Context, limiter *rate.Limiter, n int) error {
	if limiter == nil || n == 0 {
		return nil
	}
	burst := limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

type throttledWritableBlob struct {
	inner   WritableBlob
	limiter *rate.Limiter
	ctx     context.Context
}

func (w *throttledWritableBlob) Write(p []byte) (int, error) {
	if err := waitBytes(w.ctx, w.limiter, len(p)); err != nil {
		return 0, err
	}
	return w.inner.Write(p)
}

func (w *throttledWritableBlob) Sync() error  { return w.inner.Sync() }
func (w *throttledWritableBlob) Close() error { return w.inner.Close() }
