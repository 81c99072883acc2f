package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// ReplicatedStore fans writes out to several stores so a backup survives
// the loss of any single destination. Reads are served by the first store
// that has the blob.
type ReplicatedStore struct {
	stores []Store
}

// NewReplicatedStore creates a ReplicatedStore over the given stores.
// At least one store is required; the first is the read-preferred primary.
func NewReplicatedStore(stores ...Store) (*ReplicatedStore, error) {
	if len(stores) == 0 {
		return nil, errors.New("replicated store needs at least one backing store")
	}
	return &ReplicatedStore{stores: stores}, nil
}

// Open opens the blob from the first store that has it.
func (r *ReplicatedStore) Open(ctx context.Context, name string) (Blob, error) {
	var lastErr error = ErrNotFound
	for _, s := range r.stores {
		b, err := s.Open(ctx, name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	return nil, lastErr
}

// Create returns a writer that streams to every store; Close commits the
// blob everywhere and fails if any destination fails.
func (r *ReplicatedStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	blobs := make([]WritableBlob, 0, len(r.stores))
	for _, s := range r.stores {
		w, err := s.Create(ctx, name)
		if err != nil {
			for _, open := range blobs {
				open.Close()
			}
			return nil, err
		}
		blobs = append(blobs, w)
	}
	return &replicatedWritableBlob{blobs: blobs}, nil
}

// Put writes the blob to all stores concurrently.
func (r *ReplicatedStore) Put(ctx context.Context, name string, data []byte) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range r.stores {
		g.Go(func() error {
			return s.Put(ctx, name, data)
		})
	}
	return g.Wait()
}

// Delete removes the blob from all stores concurrently.
func (r *ReplicatedStore) Delete(ctx context.Context, name string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range r.stores {
		g.Go(func() error {
			return s.Delete(ctx, name)
		})
	}
	return g.Wait()
}

// List lists blobs from the primary store.
func (r *ReplicatedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return r.stores[0].List(ctx, prefix)
}

type replicatedWritableBlob struct {
	blobs []WritableBlob
}

func (w *replicatedWritableBlob) Write(p []byte) (int, error) {
	for i, b := range w.blobs {
		if _, err := b.Write(p); err != nil {
			return 0, fmt.Errorf("replica %d: %w", i, err)
		}
	}
	return len(p), nil
}

func (w *replicatedWritableBlob) Sync() error {
	for i, b := range w.blobs {
		if err := b.Sync(); err != nil {
			return fmt.Errorf("replica %d: %w", i, err)
		}
	}
	return nil
}

func (w *replicatedWritableBlob) Close() error {
	var errs []error
	for i, b := range w.blobs {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("replica %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

var _ io.Writer = (*replicatedWritableBlob)(nil)
