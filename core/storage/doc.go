// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so it can be
// replaced by the testify mock in core/storage/mocks. The service uses it to
// publish class standings snapshots as JSON objects. Both AWS S3 and
// self-hosted MinIO are supported.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
