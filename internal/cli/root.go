// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/config"
	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/ui"
)

var (
	// Global flags
	vaultName     string // Named vault from config
	vaultPathFlag string // Explicit path
	configPath    string

	// Resolved values
	resolvedVaultPath string
	cfg               *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - schema-managed markdown vaults",
	Long: `Quill manages a directory tree of markdown files whose frontmatter
conforms to a user-defined, versioned schema.

When the schema changes, 'quill diff' shows the structural operations needed
to bring existing files forward, and 'quill migrate' applies them with
dry-run preview and backup-before-mutate safety.`,
}

// rootPersistentPreRunE is assigned in init to avoid an initialization
// cycle between rootCmd and handleError.
func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	// init/version/help create or need no vault.
	switch cmd.Name() {
	case "init", "version", "help", "completion":
		return nil
	}
	if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
		return nil
	}

	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return handleError("config_load_failed", fmt.Errorf("failed to load config: %w", err))
	}
	if jsonOutput {
		ui.DisableStyles()
	} else {
		ui.ConfigureTheme(cfg.UI.Accent)
	}

	// Resolve vault path: explicit path > named vault > default > cwd.
	switch {
	case vaultPathFlag != "":
		resolvedVaultPath = vaultPathFlag
	case vaultName != "":
		resolvedVaultPath, err = cfg.GetVaultPath(vaultName)
		if err != nil {
			return handleError("vault_not_found", fmt.Errorf("vault '%s' not found in config", vaultName))
		}
	default:
		resolvedVaultPath, err = cfg.GetDefaultVaultPath()
		if err != nil {
			// Fall back to the working directory when it looks like a
			// vault.
			cwd, cwdErr := os.Getwd()
			if cwdErr == nil {
				if _, statErr := os.Stat(cwd + "/" + schema.SchemaFileName); statErr == nil {
					resolvedVaultPath = cwd
					break
				}
			}
			return handleError("no_vault", fmt.Errorf(`no vault specified

Either:
  1. Use --vault <name> (from config)
  2. Use --vault-path /path/to/vault
  3. Set default_vault in %s
  4. Run from a directory containing %s
  5. Run 'quill init /path/to/new/vault' to create one`, config.ResolveConfigPath(configPath), schema.SchemaFileName))
		}
	}

	if _, err := os.Stat(resolvedVaultPath); os.IsNotExist(err) {
		return handleError("vault_not_found",
			fmt.Errorf("vault not found: %s\n\nRun 'quill init %s' to create it", resolvedVaultPath, resolvedVaultPath))
	}

	return nil
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRunE = rootPersistentPreRunE
	rootCmd.PersistentFlags().StringVarP(&vaultName, "vault", "v", "", "Named vault from config")
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Explicit path to vault directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getVaultPath returns the resolved vault path.
func getVaultPath() string {
	return resolvedVaultPath
}
