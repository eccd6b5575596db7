package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/history"
	"github.com/quillvault/quill/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show migration history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(getVaultPath())
		if err != nil {
			return handleError("history_open_failed", err)
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return handleError("history_list_failed", err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"migrations": entries})
			return nil
		}

		if len(entries) == 0 {
			fmt.Println(ui.Hint("No migrations recorded yet."))
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  v%s -> v%s  %d/%d files",
				ui.Muted.Render(e.AppliedAt.Local().Format(time.DateTime)),
				e.FromVersion, e.ToVersion, e.AffectedFiles, e.TotalFiles)
			if e.ErrorCount > 0 {
				fmt.Printf("  %s", ui.Errorf("%d errors", e.ErrorCount))
			}
			fmt.Println()
			if e.BackupPath != "" {
				fmt.Printf("  backup: %s\n", ui.FilePath(e.BackupPath))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
