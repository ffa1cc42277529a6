package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/batchvals/internal/config"
	"github.com/me/batchvals/internal/logging"
	"github.com/me/batchvals/internal/storage"
)

func writeMetadata(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runPipeline(t *testing.T, cfg *config.Config, store *storage.MemoryStore) (stdout string, diag string, err error) {
	t.Helper()
	var out, logBuf bytes.Buffer
	logger := logging.NewLoggerWithWriter(slog.LevelInfo, "text", &logBuf)
	open := func(target string) (storage.ObjectStore, error) {
		if store != nil {
			return store, nil
		}
		return storage.NewMemoryStore(target)
	}
	err = run(context.Background(), cfg, logger, &out, open)
	return out.String(), logBuf.String(), err
}

func TestRun_BasicConversion(t *testing.T) {
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.name": "sampleA"},
		"inputs": {"GATKSVPipelineBatch.ped_file": "x.ped"}
	}`)
	cfg := &config.Config{MetadataPath: path, Workflow: "GATKSVPipelineBatch"}

	stdout, diag, err := runPipeline(t, cfg, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, stdout)
	}
	if result["name"] != "sampleA" {
		t.Errorf("name = %v, want sampleA", result["name"])
	}
	if result["ped_file"] != "x.ped" {
		t.Errorf("ped_file = %v, want x.ped", result["ped_file"])
	}

	// Every other required key defaults to null, each with a warning.
	for _, key := range []string{"samples", "bam_or_cram_files", "requester_pays_crams",
		"contig_ploidy_model_tar", "gcnv_model_tars", "qc_definitions", "outlier_cutoff_table"} {
		v, ok := result[key]
		if !ok || v != nil {
			t.Errorf("%s = %v (present=%v), want present null", key, v, ok)
		}
		if !strings.Contains(diag, "key="+key) {
			t.Errorf("missing warning for %q:\n%s", key, diag)
		}
	}
}

func TestRun_PathRewriting(t *testing.T) {
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.vcf": "gs://exec/run1/a.vcf"},
		"inputs": {}
	}`)
	cfg := &config.Config{
		MetadataPath:    path,
		Workflow:        "GATKSVPipelineBatch",
		ExecutionBucket: "gs://exec",
		OutputsDir:      "gs://final",
	}

	stdout, _, err := runPipeline(t, cfg, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, `"gs://final/run1/a.vcf"`) {
		t.Errorf("expected rewritten path in output:\n%s", stdout)
	}
}

func TestRun_RewriteMismatchAbortsWithoutOutput(t *testing.T) {
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.vcf": "gs://other/b.vcf"},
		"inputs": {}
	}`)
	cfg := &config.Config{
		MetadataPath:    path,
		Workflow:        "GATKSVPipelineBatch",
		ExecutionBucket: "gs://exec",
		OutputsDir:      "gs://final",
	}

	stdout, _, err := runPipeline(t, cfg, nil)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if stdout != "" {
		t.Errorf("no partial document may be emitted, got:\n%s", stdout)
	}
}

func TestRun_InputsAreNotRewritten(t *testing.T) {
	// Carried-over inputs predate execution and live outside the execution
	// bucket; only outputs-derived entries are rewritten.
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.vcf": "gs://exec/a.vcf"},
		"inputs": {"GATKSVPipelineBatch.ped_file": "gs://resources/trio.ped"}
	}`)
	cfg := &config.Config{
		MetadataPath:    path,
		Workflow:        "GATKSVPipelineBatch",
		ExecutionBucket: "gs://exec",
		OutputsDir:      "gs://final",
	}

	stdout, _, err := runPipeline(t, cfg, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, `"gs://resources/trio.ped"`) {
		t.Errorf("input value must pass through unrewritten:\n%s", stdout)
	}
}

func TestRun_FileListMaterialization(t *testing.T) {
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.samples": ["s1", "s2"]},
		"inputs": {}
	}`)
	store, err := storage.NewMemoryStore("gs://lists-bucket/batch1")
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		MetadataPath:   path,
		Workflow:       "GATKSVPipelineBatch",
		FileListTarget: "gs://lists-bucket/batch1",
	}

	stdout, _, err := runPipeline(t, cfg, store)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	uri, _ := result["samples_list"].(string)
	if !strings.HasSuffix(uri, "samples_list.txt") {
		t.Errorf("samples_list = %q, want URI ending in samples_list.txt", uri)
	}
	data, ok := store.Object("samples_list.txt")
	if !ok || string(data) != "s1\ns2" {
		t.Errorf("uploaded content = %q (present=%v), want s1\\ns2", data, ok)
	}
}

// With no list-valued keys in the set, enabling the materializer must not
// change the document.
func TestRun_MaterializerRoundTrip(t *testing.T) {
	content := `{
		"outputs": {"GATKSVPipelineBatch.name": "sampleA"},
		"inputs": {"GATKSVPipelineBatch.ped_file": "x.ped"}
	}`

	pathA := writeMetadata(t, content)
	cfgA := &config.Config{MetadataPath: pathA, Workflow: "GATKSVPipelineBatch"}
	withoutStore, _, err := runPipeline(t, cfgA, nil)
	if err != nil {
		t.Fatalf("run without materializer: %v", err)
	}

	pathB := writeMetadata(t, content)
	cfgB := &config.Config{
		MetadataPath:   pathB,
		Workflow:       "GATKSVPipelineBatch",
		FileListTarget: "gs://lists-bucket/batch1",
	}
	withStore, _, err := runPipeline(t, cfgB, nil)
	if err != nil {
		t.Fatalf("run with materializer: %v", err)
	}

	if withoutStore != withStore {
		t.Errorf("documents differ:\n%s\nvs:\n%s", withoutStore, withStore)
	}
}

func TestRun_UploadFailureEmitsNothing(t *testing.T) {
	path := writeMetadata(t, `{
		"outputs": {"GATKSVPipelineBatch.samples": ["s1"]},
		"inputs": {}
	}`)
	store, err := storage.NewMemoryStore("gs://lists-bucket/batch1")
	if err != nil {
		t.Fatal(err)
	}
	store.FailPut = os.ErrPermission
	cfg := &config.Config{
		MetadataPath:   path,
		Workflow:       "GATKSVPipelineBatch",
		FileListTarget: "gs://lists-bucket/batch1",
	}

	stdout, _, err := runPipeline(t, cfg, store)
	if err == nil {
		t.Fatal("expected upload failure to be fatal")
	}
	if stdout != "" {
		t.Errorf("no document may be emitted after upload failure, got:\n%s", stdout)
	}
}

func TestRun_BadConfigurationIsEager(t *testing.T) {
	path := writeMetadata(t, `{"outputs": {}, "inputs": {}}`)
	cfg := &config.Config{
		MetadataPath: path,
		Workflow:     "GATKSVPipelineBatch",
		OutputsDir:   "gs://final",
	}

	if _, _, err := runPipeline(t, cfg, nil); err == nil {
		t.Error("expected configuration error for outputs-dir without execution-bucket")
	}
}

func TestNewRootCmd_RequiresMetadataArg(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("expected error for missing metadata argument")
	}
}
