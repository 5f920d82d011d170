// Package blobstore abstracts where vector files are read from and where
// ground-truth files are published.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem; blobs are memory-mapped and writes are
//     published atomically by renaming a synced temporary file
//   - MemoryStore: in-process map, used by tests and for non-mappable reads
//   - s3.Store: Amazon S3 with ranged GETs and multipart uploads
//   - minio.Store: MinIO and other S3-compatible endpoints
//
// A WritableBlob becomes visible only when Close succeeds. Abort discards
// everything written so far; readers never observe a partial blob.
//
// Blobs that also implement Mappable expose their bytes without copying,
// which lets the vector loader share one mapping across all workers.
package blobstore
