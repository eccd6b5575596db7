package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/history"
	"github.com/quillvault/quill/internal/migrate"
	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/ui"
	"github.com/quillvault/quill/internal/vault"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate vault files to the current schema",
	Long: `Diff the current schema.yaml against the snapshot saved by the last
migration and apply the resulting plan to every file in the vault.

Operations that only add capability are applied automatically. Operations
that remove or rename data require confirmation (or --yes); removals of enum
values additionally need a replacement supplied with --map.

Run with --dry-run first to preview per-file changes. Affected files are
backed up under .quill/backups before anything is rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath := getVaultPath()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noBackup, _ := cmd.Flags().GetBool("no-backup")
		yes, _ := cmd.Flags().GetBool("yes")
		toVersion, _ := cmd.Flags().GetString("to")
		baseline, _ := cmd.Flags().GetBool("baseline")
		mapFlags, _ := cmd.Flags().GetStringArray("map")

		current, err := schema.Load(vaultPath)
		if err != nil {
			return handleError("schema_load_failed", err)
		}

		if baseline {
			if err := schema.SaveSnapshot(vaultPath, current); err != nil {
				return handleError("snapshot_save_failed", err)
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"baseline": true, "version": current.Version})
				return nil
			}
			fmt.Println(ui.Successf("Saved schema snapshot at version %q", current.Version))
			return nil
		}

		plan, err := computePlan(vaultPath, toVersion)
		if err != nil {
			return handleError("no_migration_plan", err)
		}

		if !plan.HasChanges() {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"has_changes": false})
				return nil
			}
			fmt.Println(ui.Success("Vault is up to date. No migration needed."))
			return nil
		}

		valueMappings, err := parseValueMappings(mapFlags)
		if err != nil {
			return handleError("invalid_mapping", err)
		}

		if !dryRun && len(plan.NonDeterministic) > 0 && !yes {
			fmt.Print(migrate.FormatPlan(plan))
			fmt.Println()
			if !confirmApply("Apply these changes?") {
				return handleError("migration_cancelled",
					fmt.Errorf("migration cancelled; re-run with --dry-run to preview or --yes to confirm"))
			}
		}

		files, err := vault.Files(vaultPath)
		if err != nil {
			return handleError("discovery_failed", fmt.Errorf("failed to discover vault files: %w", err))
		}
		vault.ExpectTypes(files, func(name string) bool {
			_, ok := current.Types[name]
			return ok
		})

		executor := migrate.NewExecutor(vaultPath, current)
		result, err := executor.Execute(files, plan, migrate.Options{
			DryRun:        dryRun,
			Backup:        !noBackup,
			ValueMappings: valueMappings,
		})
		if err != nil {
			return handleError("migration_failed", err)
		}

		if !dryRun {
			if err := schema.SaveSnapshot(vaultPath, current); err != nil {
				return handleError("snapshot_save_failed",
					fmt.Errorf("migration applied but snapshot save failed: %w", err))
			}
			if err := recordHistory(vaultPath, result); err != nil {
				return handleError("history_record_failed",
					fmt.Errorf("migration applied but history record failed: %w", err))
			}
		}

		if isJSONOutput() {
			outputSuccess(result)
			return nil
		}

		fmt.Print(migrate.FormatResult(result))
		if dryRun && result.AffectedFiles > 0 {
			fmt.Println("\n" + ui.Info("Run without --dry-run to apply."))
		}
		return nil
	},
}

// parseValueMappings parses --map flags of the form
// enum:<enum>:<value>=<replacement>.
func parseValueMappings(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	mappings := make(map[string]string, len(flags))
	for _, raw := range flags {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || !strings.HasPrefix(key, "enum:") || value == "" {
			return nil, fmt.Errorf("invalid --map %q: expected enum:<enum>:<value>=<replacement>", raw)
		}
		mappings[key] = value
	}
	return mappings, nil
}

func recordHistory(vaultPath string, result *migrate.Result) error {
	store, err := history.Open(vaultPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(history.Entry{
		FromVersion:   result.FromVersion,
		ToVersion:     result.ToVersion,
		TotalFiles:    result.TotalFiles,
		AffectedFiles: result.AffectedFiles,
		ErrorCount:    len(result.Errors),
		BackupPath:    result.BackupPath,
	})
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "Preview per-file changes without applying")
	migrateCmd.Flags().Bool("no-backup", false, "Skip the backup of affected files")
	migrateCmd.Flags().Bool("yes", false, "Apply non-deterministic operations without prompting")
	migrateCmd.Flags().String("to", "", "Target version tag (defaults to the schema's version)")
	migrateCmd.Flags().Bool("baseline", false, "Save the current schema as the snapshot without migrating")
	migrateCmd.Flags().StringArray("map", nil, "Replacement for a removed enum value: enum:<enum>:<value>=<replacement> (repeatable)")
	rootCmd.AddCommand(migrateCmd)
}
