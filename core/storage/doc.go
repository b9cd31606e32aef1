// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the merge service needs: fetching batch files and uploading merge
// reports. This abstraction supports both AWS S3 and self-hosted MinIO
// instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - FetchJSON / PutJSON: Convenience helpers for JSON payloads.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	var batch []map[string]any
//	err = storage.FetchJSON(ctx, client, "batches", "records.json", &batch)
package storage
