// Package minio provides a BlobStore implementation using the MinIO client.
//
// It targets MinIO and other S3-compatible systems (Ceph, SeaweedFS, Garage)
// that host benchmark datasets on-premises.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "datasets", "deep10m/")
//	queries, err := vectorset.Load(ctx, store, "query.fbin")
//
// Streaming writes become visible only when Close completes the upload.
package minio
