// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface, which serves two
// purposes in this tool:
//
//   - Bucket resources: listing buckets and reading or changing their
//     location, tagging and versioning (see feature/buckets).
//   - Artifact output: migration can write shared policy documents to a
//     bucket prefix instead of a local directory (see unify.BucketStore).
//
// The interface keeps storage interactions mockable in unit tests (see
// core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	buckets, err := client.ListBuckets(ctx)
package storage
