// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface so the crawl
// snapshot archive can be exercised against the testify mock in
// core/storage/mocks. AWS S3 and self-hosted MinIO both work.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket at startup.
//   - PutObject: uploads a snapshot.
//   - GetObject: streams a previous snapshot back.
//   - ListObjects: lists archived snapshots under a prefix.
//
// IsNotFound recognises the "NoSuchKey" response so a first run without a
// previous snapshot is not treated as an error.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
