package migrate

import (
	"fmt"

	"github.com/quillvault/quill/internal/backup"
	"github.com/quillvault/quill/internal/parser"
	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/vault"
)

// FileResult records the computed (and possibly applied) changes for one
// file that needed at least one change.
type FileResult struct {
	FilePath     string   `json:"file_path"`
	RelativePath string   `json:"relative_path"`
	Changes      []Change `json:"changes"`
	Applied      bool     `json:"applied"`
	Error        string   `json:"error,omitempty"`
}

// Result is the terminal artifact of one migration run.
type Result struct {
	DryRun        bool         `json:"dry_run"`
	FromVersion   string       `json:"from_version"`
	ToVersion     string       `json:"to_version"`
	TotalFiles    int          `json:"total_files"`
	AffectedFiles int          `json:"affected_files"`
	FileResults   []FileResult `json:"file_results"`
	Errors        []string     `json:"errors,omitempty"`
	BackupPath    string       `json:"backup_path,omitempty"`
}

// Options controls one Execute call.
type Options struct {
	// DryRun computes and reports per-file effects without writing anything.
	DryRun bool
	// Backup copies affected files aside before the first mutation.
	Backup bool
	// ValueMappings supplies replacements for remove-enum-value operations,
	// keyed "enum:<name>:<value>".
	ValueMappings map[string]string
}

// BackupFunc creates a backup of the given vault-relative files and returns
// the backup location. Injected so tests can force backup failure.
type BackupFunc func(vaultRoot string, relPaths []string, label string) (string, error)

// Executor applies a migration plan across a vault. It holds no mutable
// state between Execute calls; the plan passed in is read-only.
type Executor struct {
	VaultPath string
	// Schema is the migration target schema, used to resolve relation
	// fields for link normalization.
	Schema *schema.Schema
	// Backup defaults to backup.Create.
	Backup BackupFunc
}

// NewExecutor creates an executor for the given vault and target schema.
func NewExecutor(vaultPath string, sch *schema.Schema) *Executor {
	return &Executor{
		VaultPath: vaultPath,
		Schema:    sch,
		Backup:    backup.Create,
	}
}

// pendingWrite holds the mutated frontmatter for one file between the
// planning pass and the apply pass.
type pendingWrite struct {
	resultIndex int
	frontmatter map[string]interface{}
	body        string
}

// Execute computes per-file changes for the plan and, unless dry-running,
// applies them. Files whose frontmatter cannot be parsed are excluded
// entirely and recorded as run-level errors; write failures are isolated
// per file. Only backup failure aborts the run, and it does so before any
// file has been mutated.
func (e *Executor) Execute(files []vault.File, plan *Plan, opts Options) (*Result, error) {
	result := &Result{
		DryRun:      opts.DryRun,
		FromVersion: plan.FromVersion,
		ToVersion:   plan.ToVersion,
		TotalFiles:  len(files),
	}

	opsByType := partitionOps(plan.Ops())
	var pending []pendingWrite

	for _, file := range files {
		doc, err := parser.ParseFile(file.Path)
		if err != nil {
			// Never partially migrate a file whose metadata could not be
			// understood.
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.RelativePath, err))
			continue
		}

		resolvedType := doc.Type()
		if resolvedType == "" {
			resolvedType = file.ExpectedType
		}
		fileOps := opsByType.forChain(typeChain(e.Schema, resolvedType))
		if len(fileOps) == 0 {
			continue
		}

		working := cloneFrontmatter(doc.Frontmatter)
		changes := computeChanges(working, resolvedType, e.Schema, fileOps, opts.ValueMappings)
		if len(changes) == 0 {
			continue
		}

		result.FileResults = append(result.FileResults, FileResult{
			FilePath:     file.Path,
			RelativePath: file.RelativePath,
			Changes:      changes,
		})
		pending = append(pending, pendingWrite{
			resultIndex: len(result.FileResults) - 1,
			frontmatter: working,
			body:        doc.Body,
		})
	}

	result.AffectedFiles = len(result.FileResults)

	if opts.DryRun {
		return result, nil
	}

	if opts.Backup && result.AffectedFiles > 0 {
		label := fmt.Sprintf("v%s-to-v%s", plan.FromVersion, plan.ToVersion)
		relPaths := make([]string, 0, len(result.FileResults))
		for _, fr := range result.FileResults {
			relPaths = append(relPaths, fr.RelativePath)
		}
		backupPath, err := e.Backup(e.VaultPath, relPaths, label)
		if err != nil {
			// Abort with no mutation performed.
			return nil, fmt.Errorf("backup failed, aborting migration: %w", err)
		}
		result.BackupPath = backupPath
	}

	for _, pw := range pending {
		fr := &result.FileResults[pw.resultIndex]
		if err := parser.WriteFile(fr.FilePath, pw.frontmatter, pw.body); err != nil {
			fr.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", fr.RelativePath, err))
			continue
		}
		fr.Applied = true
	}

	return result, nil
}

// opPartition buckets a plan's operations by the type they are scoped to.
// Operations with no single target type (enum operations and link
// normalization) land in the global bucket and apply to every file. Built
// once per Execute call.
type opPartition struct {
	byType map[string][]Op
	global []Op
}

func partitionOps(ops []Op) opPartition {
	p := opPartition{byType: make(map[string][]Op)}
	for _, op := range ops {
		if target := op.AffectedType(); target != "" {
			p.byType[target] = append(p.byType[target], op)
		} else {
			p.global = append(p.global, op)
		}
	}
	return p
}

// forChain returns the operations relevant to a file whose resolved type has
// the given parent chain: operations scoped to the type itself come first,
// then operations scoped to each ancestor (a field declared on a parent type
// belongs to every descendant), then the global bucket.
func (p opPartition) forChain(chain []string) []Op {
	var typed []Op
	for _, name := range chain {
		typed = append(typed, p.byType[name]...)
	}
	if len(typed) == 0 {
		return p.global
	}
	return append(typed, p.global...)
}

// typeChain returns the type and its ancestors, nearest first. Unknown types
// yield a single-element chain so exact-name operations still reach files
// whose type the schema no longer (or never) declares. Cycles terminate.
func typeChain(sch *schema.Schema, typeName string) []string {
	if typeName == "" {
		return nil
	}
	var chain []string
	seen := make(map[string]bool)
	for name := typeName; name != "" && !seen[name]; {
		seen[name] = true
		chain = append(chain, name)
		td := sch.Types[name]
		if td == nil {
			break
		}
		name = td.Parent
	}
	return chain
}

func cloneFrontmatter(fm map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(fm))
	for k, v := range fm {
		clone[k] = v
	}
	return clone
}
