package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/blobstore/minio"
	"github.com/hupe1980/vecgt/blobstore/s3"
)

// location is a parsed file argument.
type location struct {
	scheme string // "file", "s3" or "minio"
	host   string // minio endpoint
	bucket string
	key    string // object key, or local path
}

func parseLocation(raw string) (location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if raw == "" {
			return location{}, fmt.Errorf("empty location")
		}
		return location{scheme: "file", key: raw}, nil
	}

	switch scheme {
	case "file":
		return location{scheme: "file", key: rest}, nil
	case "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return location{}, fmt.Errorf("s3 location %q needs a bucket and a key", raw)
		}
		return location{scheme: "s3", bucket: bucket, key: key}, nil
	case "minio":
		host, path, _ := strings.Cut(rest, "/")
		bucket, key, _ := strings.Cut(path, "/")
		if host == "" || bucket == "" || key == "" {
			return location{}, fmt.Errorf("minio location %q needs a host, a bucket and a key", raw)
		}
		return location{scheme: "minio", host: host, bucket: bucket, key: key}, nil
	default:
		return location{}, fmt.Errorf("unsupported scheme %q in %q", scheme, raw)
	}
}

// open returns the store holding loc and the blob name within it.
func (loc location) open(ctx context.Context) (blobstore.BlobStore, string, error) {
	switch loc.scheme {
	case "file":
		return blobstore.NewLocalStore(filepath.Dir(loc.key)), filepath.Base(loc.key), nil
	case "s3":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load aws config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(cfg), loc.bucket, ""), loc.key, nil
	case "minio":
		client, err := miniogo.New(loc.host, &miniogo.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: os.Getenv("MINIO_INSECURE") == "",
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, loc.bucket, ""), loc.key, nil
	default:
		return nil, "", fmt.Errorf("unsupported scheme %q", loc.scheme)
	}
}

func openLocation(ctx context.Context, raw string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}
	return loc.open(ctx)
}
