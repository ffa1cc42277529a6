// Package values builds the canonical input-values document from workflow
// run metadata: output extraction, path rewriting, missing-key reporting,
// file-list materialization, and JSON serialization.
package values

import (
	"log/slog"
	"sort"
	"strings"
)

// DefaultWorkflow is the workflow namespace stripped from output keys.
const DefaultWorkflow = "GATKSVPipelineBatch"

// RequiredInputKeys is the fixed allow-list of workflow inputs carried into
// the value set. Every one of these is present in the final document,
// possibly as null with a warning.
var RequiredInputKeys = map[string]bool{
	"name":                    true,
	"samples":                 true,
	"bam_or_cram_files":       true,
	"requester_pays_crams":    true,
	"ped_file":                true,
	"contig_ploidy_model_tar": true,
	"gcnv_model_tars":         true,
	"qc_definitions":          true,
	"outlier_cutoff_table":    true,
}

// FileListKeys is the fixed set of identifiers whose values are large path
// collections eligible for file-list materialization.
var FileListKeys = map[string]bool{
	"PE_files":          true,
	"SR_files":          true,
	"samples":           true,
	"std_manta_vcfs":    true,
	"std_wham_vcfs":     true,
	"std_melt_vcfs":     true,
	"std_scramble_vcfs": true,
	"gcnv_model_tars":   true,
}

// ValueSet is the flat mapping of short identifiers to values under
// construction. Values are JSON scalars, strings, lists of strings, or nil.
type ValueSet map[string]any

// FromOutputs builds a ValueSet from the run's outputs mapping: the
// workflow namespace prefix ("<workflow>.") is stripped from each key and
// entries with null values are dropped.
func FromOutputs(outputs map[string]any, workflow string) ValueSet {
	prefix := workflow + "."
	vs := make(ValueSet, len(outputs))
	for key, value := range outputs {
		if value == nil {
			continue
		}
		vs[strings.TrimPrefix(key, prefix)] = value
	}
	return vs
}

// FillFromInputs copies allow-listed workflow inputs into the set. An input
// qualifies when the last dot-segment of its qualified name is in
// RequiredInputKeys; it is inserted under that bare name only if the key is
// not already populated from outputs. Output-derived entries always win.
func FillFromInputs(vs ValueSet, inputs map[string]any) {
	for qualified, value := range inputs {
		key := qualified
		if i := strings.LastIndex(qualified, "."); i >= 0 {
			key = qualified[i+1:]
		}
		if !RequiredInputKeys[key] {
			continue
		}
		if _, ok := vs[key]; ok {
			continue
		}
		vs[key] = value
	}
}

// FillMissing inserts a null placeholder for every required input absent
// from the set and logs one warning per key. A missing required input is a
// gap for manual follow-up, never a fatal condition.
func FillMissing(vs ValueSet, logger *slog.Logger) {
	missing := make([]string, 0, len(RequiredInputKeys))
	for key := range RequiredInputKeys {
		if _, ok := vs[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		logger.Warn("expected workflow input not found in metadata, add this entry manually", "key", key)
		vs[key] = nil
	}
}
