package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quillvault/quill/internal/testutil"
)

// runQuill executes the root command with the given arguments. Flag values
// registered on subcommands persist between invocations, so callers pass
// explicit values (e.g. --baseline=false) when re-running a command.
func runQuill(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

func TestInitCreatesVaultWithSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault")

	if err := runQuill(t, "init", dir); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, rel := range []string{"schema.yaml", ".quill/schema-snapshot.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("expected %s after init: %v", rel, err)
		}
	}

	if err := runQuill(t, "init", dir); err == nil {
		t.Error("re-initializing an existing vault must fail")
	}
}

func TestMigrateEndToEnd(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithSchema(testutil.TaskProjectSchema()).
		WithFile("tasks/one.md", "---\ntype: task\nstatus: todo\ndue: \"2025-06-01\"\n---\nBody.\n").
		Build()
	cfgPath := emptyConfig(t)

	// diff before a baseline exists must point at the fix.
	err := runQuill(t, "diff", "--vault-path", v.Path, "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "baseline") {
		t.Fatalf("expected a no-snapshot error mentioning --baseline, got %v", err)
	}

	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath, "--baseline"); err != nil {
		t.Fatalf("baseline failed: %v", err)
	}
	if !v.FileExists(".quill/schema-snapshot.yaml") {
		t.Fatal("baseline did not save a snapshot")
	}

	// Evolve the schema: add priority, rename due to deadline.
	evolved := strings.Replace(testutil.TaskProjectSchema(), `version: "1"`, `version: "2"`, 1)
	evolved = strings.Replace(evolved, "      due:\n        type: date\n", "      deadline:\n        type: date\n      priority:\n        type: number\n        default: 3\n", 1)
	if err := os.WriteFile(filepath.Join(v.Path, "schema.yaml"), []byte(evolved), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runQuill(t, "diff", "--vault-path", v.Path, "--config", cfgPath); err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath,
		"--baseline=false", "--dry-run"); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	v.AssertFileNotContains("tasks/one.md", "deadline")
	v.AssertFileNotContains("tasks/one.md", "priority")

	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath,
		"--baseline=false", "--dry-run=false", "--yes"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	v.AssertFileContains("tasks/one.md", "deadline:")
	v.AssertFileContains("tasks/one.md", "priority: 3")
	v.AssertFileNotContains("tasks/one.md", "due:")

	if !v.FileExists(".quill/history.db") {
		t.Error("migration did not record history")
	}
	backups, err := os.ReadDir(filepath.Join(v.Path, ".quill", "backups"))
	if err != nil || len(backups) == 0 {
		t.Errorf("migration did not create a backup: %v", err)
	}
	v.AssertFileContains(".quill/schema-snapshot.yaml", `version: "2"`)

	// Re-running against the updated snapshot is a no-op.
	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath,
		"--baseline=false", "--dry-run=false", "--yes"); err != nil {
		t.Fatalf("re-run failed: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(v.Path, ".quill", "backups"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(backups) {
		t.Error("a no-op migration must not create another backup")
	}
}

func TestMigrateRequiresConfirmationForRemovals(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithSchema(testutil.TaskProjectSchema()).
		WithFile("a.md", "---\ntype: task\nstatus: todo\ndue: \"2025-06-01\"\n---\n").
		Build()
	cfgPath := emptyConfig(t)

	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath, "--baseline"); err != nil {
		t.Fatal(err)
	}

	evolved := strings.Replace(testutil.TaskProjectSchema(), "      due:\n        type: date\n", "", 1)
	if err := os.WriteFile(filepath.Join(v.Path, "schema.yaml"), []byte(evolved), 0644); err != nil {
		t.Fatal(err)
	}

	// Stdin is not a terminal under test, so the prompt declines.
	err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath,
		"--baseline=false", "--dry-run=false", "--yes=false")
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Fatalf("expected cancellation without --yes, got %v", err)
	}
	v.AssertFileContains("a.md", "due:")

	if err := runQuill(t, "migrate", "--vault-path", v.Path, "--config", cfgPath,
		"--baseline=false", "--dry-run=false", "--yes"); err != nil {
		t.Fatalf("migrate with --yes failed: %v", err)
	}
	v.AssertFileNotContains("a.md", "due:")
}

func TestJSONErrorEnvelope(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithSchema(testutil.TaskProjectSchema()).
		Build()
	cfgPath := emptyConfig(t)

	// --json binds a package-level flag and handleError flips the silence
	// switches; restore both for later tests.
	t.Cleanup(func() {
		jsonOutput = false
		rootCmd.SilenceErrors = false
		rootCmd.SilenceUsage = false
	})

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	// No snapshot exists, so diff fails; the failure must arrive as a
	// structured envelope on stdout, not as cobra text.
	runErr := runQuill(t, "diff", "--vault-path", v.Path, "--config", cfgPath, "--json")

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if runErr == nil {
		t.Fatal("the error must still propagate for a nonzero exit code")
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("output is not a JSON envelope: %v\n%s", err, out)
	}
	if resp.OK || resp.Error == nil {
		t.Fatalf("expected ok=false with error info, got %+v", resp)
	}
	if resp.Error.Code != "no_migration_plan" || !strings.Contains(resp.Error.Message, "baseline") {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
}

func TestParseValueMappings(t *testing.T) {
	got, err := parseValueMappings([]string{"enum:status:done=completed"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got["enum:status:done"] != "completed" {
		t.Errorf("mapping mismatch: %v", got)
	}

	for _, bad := range []string{"status:done=completed", "enum:status:done", "enum:status:done="} {
		if _, err := parseValueMappings([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}

	if m, err := parseValueMappings(nil); err != nil || m != nil {
		t.Errorf("empty input must yield nil, got %v, %v", m, err)
	}
}
