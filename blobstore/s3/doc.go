// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "ann-datasets", "gist1m/")
//
//	base, err := vectorset.Load(ctx, store, "base.fbin")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large ground-truth files, aborted on failure so
//     no object is ever published half-written
//   - Configurable key prefix
package s3
