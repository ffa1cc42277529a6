// Package config holds the tool's configuration and its eager validation.
package config

import (
	"fmt"
	"strings"

	"github.com/me/batchvals/internal/storage"
)

// Config holds all invocation options. Prefix options are validated and
// normalized by Normalize before any transformation runs.
type Config struct {
	MetadataPath    string // run-metadata document (positional argument)
	Workflow        string // workflow namespace stripped from output keys
	ExecutionBucket string // bucket outputs were written to during execution
	OutputsDir      string // permanent location that replaces ExecutionBucket
	FileListTarget  string // bucket/subdir for file-list uploads; empty disables
	LogLevel        string // debug, info, warn, error
	LogFormat       string // text, json
}

// Normalize validates the prefix configuration and strips trailing path
// separators. The execution-bucket and outputs-dir prefixes are a pair:
// supplying one without the other is an error, and both must carry a
// recognized remote-storage scheme.
func (c *Config) Normalize() error {
	if (c.ExecutionBucket == "") != (c.OutputsDir == "") {
		return fmt.Errorf("--execution-bucket and --final-workflow-outputs-dir must be supplied together")
	}
	if c.ExecutionBucket != "" {
		if !storage.HasRemoteScheme(c.ExecutionBucket) {
			return fmt.Errorf("--execution-bucket %q must start with gs:// or s3://", c.ExecutionBucket)
		}
		if !storage.HasRemoteScheme(c.OutputsDir) {
			return fmt.Errorf("--final-workflow-outputs-dir %q must start with gs:// or s3://", c.OutputsDir)
		}
		c.ExecutionBucket = strings.TrimSuffix(c.ExecutionBucket, "/")
		c.OutputsDir = strings.TrimSuffix(c.OutputsDir, "/")
	}
	if c.FileListTarget != "" {
		if _, _, _, err := storage.SplitBucket(c.FileListTarget); err != nil {
			return fmt.Errorf("--file-list-bucket: %w", err)
		}
		c.FileListTarget = strings.TrimSuffix(c.FileListTarget, "/")
	}
	return nil
}
