package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new vault",
	Long: `Create a new vault with a starter schema.yaml and save the initial
schema snapshot used as the baseline for future migrations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(absPath, 0755); err != nil {
			return handleError("init_failed", fmt.Errorf("failed to create vault directory: %w", err))
		}

		schemaPath := filepath.Join(absPath, schema.SchemaFileName)
		if _, err := os.Stat(schemaPath); err == nil {
			return handleError("already_initialized", fmt.Errorf("vault already initialized: %s exists", schemaPath))
		}

		if err := schema.CreateDefault(absPath); err != nil {
			return handleError("init_failed", err)
		}

		sch, err := schema.Load(absPath)
		if err != nil {
			return handleError("schema_load_failed", err)
		}
		if err := schema.SaveSnapshot(absPath, sch); err != nil {
			return handleError("snapshot_save_failed", err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"vault_path":     absPath,
				"schema_version": sch.Version,
			})
			return nil
		}

		fmt.Println(ui.Successf("Created vault at %s", absPath))
		fmt.Println(ui.Hint("Edit schema.yaml to define your types, then run 'quill diff' after changes."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
