package values

import (
	"fmt"
	"sort"
	"strings"
)

// Prefixes holds the execution-bucket and outputs-dir prefix pair used to
// promote execution paths to their permanent location. Both are already
// normalized (scheme-checked, no trailing slash) by config validation.
type Prefixes struct {
	ExecutionBucket string
	OutputsDir      string
}

// MismatchError reports a value that was expected to live under the
// execution bucket but does not. A stale path leaking into the value set is
// fatal; silently passing it through is forbidden.
type MismatchError struct {
	Key    string
	Bucket string
	Value  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("execution bucket %s not found in output %q: %s", e.Bucket, e.Key, e.Value)
}

// Rewrite replaces every occurrence of the execution-bucket prefix with the
// outputs-dir prefix in all string and list-of-string entries of the set,
// in place. Every such entry must contain the execution-bucket prefix;
// a value without it fails with a MismatchError. Values of other types pass
// through untouched. A nil Prefixes is a no-op.
func Rewrite(vs ValueSet, p *Prefixes) error {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(vs))
	for key := range vs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := vs[key].(type) {
		case string:
			rewritten, err := p.rewriteOne(key, v)
			if err != nil {
				return err
			}
			vs[key] = rewritten
		case []any:
			strs, ok := asStringSlice(v)
			if !ok {
				continue
			}
			for i, s := range strs {
				rewritten, err := p.rewriteOne(key, s)
				if err != nil {
					return err
				}
				strs[i] = rewritten
			}
			vs[key] = strs
		case []string:
			for i, s := range v {
				rewritten, err := p.rewriteOne(key, s)
				if err != nil {
					return err
				}
				v[i] = rewritten
			}
		}
	}
	return nil
}

func (p *Prefixes) rewriteOne(key, value string) (string, error) {
	if !strings.Contains(value, p.ExecutionBucket) {
		return "", &MismatchError{Key: key, Bucket: p.ExecutionBucket, Value: value}
	}
	return strings.ReplaceAll(value, p.ExecutionBucket, p.OutputsDir), nil
}

// asStringSlice converts a decoded JSON/YAML list to []string if every
// element is a string.
func asStringSlice(list []any) ([]string, bool) {
	strs := make([]string, len(list))
	for i, el := range list {
		s, ok := el.(string)
		if !ok {
			return nil, false
		}
		strs[i] = s
	}
	return strs, true
}
