package migrate

import (
	"fmt"
	"strings"

	"github.com/quillvault/quill/internal/ui"
)

// FormatPlan renders a migration plan for terminal output.
func FormatPlan(plan *Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Schema changes: v%s -> v%s\n", plan.FromVersion, plan.ToVersion)

	if !plan.HasChanges() {
		b.WriteString("\n" + ui.Success("No schema changes detected.") + "\n")
		return b.String()
	}

	if len(plan.Deterministic) > 0 {
		fmt.Fprintf(&b, "\nAutomatic %s:\n", ui.Count(len(plan.Deterministic), "operation", "operations"))
		for _, op := range plan.Deterministic {
			fmt.Fprintf(&b, "  %s %s\n", ui.SymbolSuccess, op.Describe())
		}
	}

	if len(plan.NonDeterministic) > 0 {
		fmt.Fprintf(&b, "\nNeeds confirmation %s:\n", ui.Count(len(plan.NonDeterministic), "operation", "operations"))
		for _, op := range plan.NonDeterministic {
			fmt.Fprintf(&b, "  %s %s\n", ui.SymbolWarning, op.Describe())
		}
	}

	return b.String()
}

// FormatResult renders a migration result for terminal output. It is a pure
// projection of the result and carries no additional state.
func FormatResult(result *Result) string {
	var b strings.Builder

	if result.DryRun {
		b.WriteString(ui.Header("Dry run - no changes were made") + "\n\n")
	}

	fmt.Fprintf(&b, "Migration v%s -> v%s: %d of %d %s affected\n",
		result.FromVersion, result.ToVersion,
		result.AffectedFiles, result.TotalFiles,
		pluralize("file", result.TotalFiles))

	for _, fr := range result.FileResults {
		status := ""
		if fr.Error != "" {
			status = " " + ui.Error(fr.Error)
		} else if fr.Applied {
			status = " " + ui.SymbolSuccess
		}
		fmt.Fprintf(&b, "\n%s%s\n", ui.FilePath(fr.RelativePath), status)
		for _, change := range fr.Changes {
			fmt.Fprintf(&b, "  %s\n", change.Describe())
		}
	}

	if result.BackupPath != "" {
		fmt.Fprintf(&b, "\nBacked up %s to %s\n",
			ui.Count(result.AffectedFiles, "file", "files"), result.BackupPath)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.Warningf("%d %s:", len(result.Errors), pluralize("error", len(result.Errors))))
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	return b.String()
}

func pluralize(singular string, count int) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
