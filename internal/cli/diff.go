package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/migrate"
	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/ui"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show schema changes since the last migration",
	Long: `Compare the current schema.yaml against the snapshot saved by the last
migration and show the structural operations a migration would perform.

Operations that only add capability are applied automatically by
'quill migrate'; operations that remove or rename require confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath := getVaultPath()

		toVersion, _ := cmd.Flags().GetString("to")
		plan, err := computePlan(vaultPath, toVersion)
		if err != nil {
			return handleError("no_migration_plan", err)
		}

		if isJSONOutput() {
			outputSuccess(plan)
			return nil
		}

		fmt.Print(migrate.FormatPlan(plan))
		if plan.HasChanges() {
			fmt.Println("\n" + ui.Info("Run 'quill migrate' to apply."))
		}
		return nil
	},
}

// computePlan loads the snapshot and current schema and diffs them.
func computePlan(vaultPath, toVersion string) (*migrate.Plan, error) {
	current, err := schema.Load(vaultPath)
	if err != nil {
		return nil, err
	}

	snapshot, err := schema.LoadSnapshot(vaultPath)
	if err != nil {
		if errors.Is(err, schema.ErrNoSnapshot) {
			return nil, fmt.Errorf("no schema snapshot found; run 'quill init' or 'quill migrate --baseline' first")
		}
		return nil, err
	}

	if toVersion == "" {
		toVersion = current.Version
	}
	return migrate.DiffSchemas(snapshot, current, snapshot.Version, toVersion), nil
}

func init() {
	diffCmd.Flags().String("to", "", "Target version tag for the plan (defaults to the schema's version)")
	rootCmd.AddCommand(diffCmd)
}
