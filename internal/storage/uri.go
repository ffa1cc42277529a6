// Package storage provides object-storage URI handling and a narrow upload
// client used to materialize file-list artifacts.
package storage

import (
	"fmt"
	"strings"
)

// Supported URI schemes for remote storage locations.
const (
	SchemeGS = "gs"
	SchemeS3 = "s3"
)

// ParseScheme extracts the scheme from a storage URI.
// Returns ("gs", "bucket/path") for "gs://bucket/path".
// Returns ("", raw) for bare strings with no scheme.
func ParseScheme(uri string) (scheme, rest string) {
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i]), uri[i+3:]
	}
	return "", uri
}

// HasRemoteScheme reports whether the URI starts with a recognized
// remote-storage scheme marker.
func HasRemoteScheme(uri string) bool {
	scheme, _ := ParseScheme(uri)
	return scheme == SchemeGS || scheme == SchemeS3
}

// SplitBucket splits a storage URI into its scheme, top-level bucket name,
// and subdirectory path (no leading slash, may be empty).
// "gs://my-bucket/lists/run1" → ("gs", "my-bucket", "lists/run1").
func SplitBucket(uri string) (scheme, bucket, subdir string, err error) {
	scheme, rest := ParseScheme(uri)
	if scheme != SchemeGS && scheme != SchemeS3 {
		return "", "", "", fmt.Errorf("storage URI %q: missing gs:// or s3:// scheme", uri)
	}
	bucket, subdir, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", "", fmt.Errorf("storage URI %q: missing bucket name", uri)
	}
	return scheme, bucket, strings.Trim(subdir, "/"), nil
}

// BuildURI constructs a scheme://bucket/key URI from path segments,
// skipping empty segments.
func BuildURI(scheme, bucket string, segments ...string) string {
	parts := []string{bucket}
	for _, s := range segments {
		if s != "" {
			parts = append(parts, strings.Trim(s, "/"))
		}
	}
	return scheme + "://" + strings.Join(parts, "/")
}
