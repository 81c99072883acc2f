// Package blobstore abstracts destinations for container backups.
//
// A [Store] holds named immutable blobs. Lightfs writes one blob per
// backup; where a backup lands is the caller's choice:
//
//   - [LocalStore]: a directory on the local filesystem (atomic temp+rename)
//   - [MemoryStore]: in-memory, for tests
//   - [ReplicatedStore]: fan-out writes to several stores
//   - [ThrottledStore]: bandwidth-limited writes
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: AWS S3
//
// Stores only move bytes; they know nothing about the container format.
package blobstore
