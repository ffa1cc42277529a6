package values

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// convertForOutput recursively prepares values for JSON output:
// - float64 values become json.Number to avoid scientific notation
// - NaN and Inf become null (not representable in JSON)
func convertForOutput(v any) any {
	switch val := v.(type) {
	case ValueSet:
		return convertForOutput(map[string]any(val))
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertForOutput(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertForOutput(v)
		}
		return result
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		// 'f' with -1 precision keeps the shortest exact decimal form.
		return json.Number(strconv.FormatFloat(val, 'f', -1, 64))
	default:
		return v
	}
}

// Marshal renders the set as JSON with lexicographically sorted keys and
// 4-space indentation.
func Marshal(vs ValueSet) ([]byte, error) {
	return json.MarshalIndent(convertForOutput(vs), "", "    ")
}

// Write emits the serialized set to w followed by a trailing newline. This
// is the tool's sole success output.
func Write(w io.Writer, vs ValueSet) error {
	data, err := Marshal(vs)
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("write values: %w", err)
	}
	return nil
}
