package values

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/me/batchvals/internal/storage"
)

const listSuffix = "_list"

// MaterializeFileLists uploads each file-list-valued entry of the set as a
// newline-delimited text blob named "<key>_list.txt" and records the
// resulting URI under "<key>_list". Keys absent from the set or holding a
// null value are skipped; a present value that is not a list of strings is
// an error. Uploads run sequentially; any storage failure aborts the run.
func MaterializeFileLists(ctx context.Context, vs ValueSet, store storage.ObjectStore) error {
	keys := make([]string, 0, len(FileListKeys))
	for key := range FileListKeys {
		if _, ok := vs[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := vs[key]
		if value == nil {
			continue
		}
		paths, ok := toStringList(value)
		if !ok {
			return fmt.Errorf("file list %q: expected a list of strings, got %T", key, value)
		}
		uri, err := uploadFileList(ctx, store, key+listSuffix, paths)
		if err != nil {
			return err
		}
		vs[key+listSuffix] = uri
	}
	return nil
}

// uploadFileList serializes paths through a scoped temporary file and
// uploads the content as "<name>.txt". The temp file is removed on every
// exit path, upload failure included.
func uploadFileList(ctx context.Context, store storage.ObjectStore, name string, paths []string) (string, error) {
	tmp, err := os.CreateTemp("", name+"-*.txt")
	if err != nil {
		return "", fmt.Errorf("file list %q: create temp file: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(paths, "\n")); err != nil {
		tmp.Close()
		return "", fmt.Errorf("file list %q: write temp file: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("file list %q: close temp file: %w", name, err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("file list %q: read temp file: %w", name, err)
	}
	return store.Put(ctx, name+".txt", data)
}

func toStringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		return asStringSlice(v)
	default:
		return nil, false
	}
}
