package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Default endpoints per URI scheme, overridable via S3_ENDPOINT.
const (
	endpointGCS = "storage.googleapis.com"
	endpointAWS = "s3.amazonaws.com"
)

// S3Store uploads objects to an S3-compatible backend (AWS S3, GCS in
// interoperability mode, MinIO) under a fixed bucket and subdirectory.
//
// Credentials come from the environment: AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY when set, the client's AWS env chain otherwise.
type S3Store struct {
	client *minio.Client
	scheme string
	bucket string
	subdir string

	bucketOK bool
}

// NewS3Store creates an S3Store rooted at the given target URI
// (e.g. "gs://my-bucket/lists"). The endpoint is chosen by scheme unless
// S3_ENDPOINT is set.
func NewS3Store(target string) (*S3Store, error) {
	scheme, bucket, subdir, err := SplitBucket(target)
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	useSSL := true
	if endpoint == "" {
		if scheme == SchemeGS {
			endpoint = endpointGCS
		} else {
			endpoint = endpointAWS
		}
	} else if os.Getenv("S3_USE_SSL") == "false" {
		useSSL = false
	}

	var creds *credentials.Credentials
	if ak := os.Getenv("AWS_ACCESS_KEY_ID"); ak != "" {
		creds = credentials.NewStaticV4(ak, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: os.Getenv("AWS_REGION"),
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client for %s: %w", endpoint, err)
	}

	return &S3Store{
		client: client,
		scheme: scheme,
		bucket: bucket,
		subdir: subdir,
	}, nil
}

// Put uploads data as a single object named name under the target location
// and returns its URI. The upload goes to a temporary key first and is
// finalized with a server-side copy, so the final name never references a
// partial object.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := joinKey(s.subdir, name)
	uri := BuildURI(s.scheme, s.bucket, key)
	tmpKey := key + ".tmp-" + uuid.NewString()

	_, err := s.client.PutObject(ctx, s.bucket, tmpKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", &IOError{Op: "put", URI: uri, Err: err}
	}

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: key},
		minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey})
	if err != nil {
		return "", &IOError{Op: "finalize", URI: uri, Err: err}
	}

	if err := s.client.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{}); err != nil {
		return "", &IOError{Op: "cleanup", URI: uri, Err: err}
	}

	return uri, nil
}

// ensureBucket creates the target bucket if it does not exist yet.
// Checked once per store; all uploads go to the same bucket.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s.bucketOK {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return &IOError{Op: "stat bucket", URI: BuildURI(s.scheme, s.bucket), Err: err}
	}
	if !exists {
		err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: os.Getenv("AWS_REGION")})
		if err != nil {
			return &IOError{Op: "create bucket", URI: BuildURI(s.scheme, s.bucket), Err: err}
		}
	}
	s.bucketOK = true
	return nil
}
