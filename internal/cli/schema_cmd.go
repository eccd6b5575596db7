package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/quillvault/quill/internal/schema"
	"github.com/quillvault/quill/internal/ui"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the vault's schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		sch, err := schema.Load(getVaultPath())
		if err != nil {
			return handleError("schema_load_failed", err)
		}

		if isJSONOutput() {
			outputSuccess(sch)
			return nil
		}

		fmt.Printf("Schema version: %s  links: %s\n", orUnset(sch.Version), orUnset(string(sch.Links)))

		typeNames := make([]string, 0, len(sch.Types))
		for name := range sch.Types {
			typeNames = append(typeNames, name)
		}
		sort.Strings(typeNames)

		for _, name := range typeNames {
			td := sch.Types[name]
			header := name
			if td.Parent != "" {
				header += " (parent: " + td.Parent + ")"
			}
			fmt.Printf("\n%s\n", ui.Header(header))

			fieldNames := make([]string, 0, len(td.Fields))
			for f := range td.Fields {
				fieldNames = append(fieldNames, f)
			}
			sort.Strings(fieldNames)
			for _, f := range fieldNames {
				def := td.Fields[f]
				line := fmt.Sprintf("  %s: %s", f, def.Type)
				if def.Enum != "" {
					line += " (" + def.Enum + ")"
				}
				if def.Target != "" {
					line += " -> " + def.Target
				}
				if def.Default != nil {
					line += fmt.Sprintf(" %s", ui.Hint(fmt.Sprintf("default: %v", def.Default)))
				}
				fmt.Println(line)
			}
		}

		enumNames := make([]string, 0, len(sch.Enums))
		for name := range sch.Enums {
			enumNames = append(enumNames, name)
		}
		sort.Strings(enumNames)
		if len(enumNames) > 0 {
			fmt.Printf("\n%s\n", ui.Header("enums"))
			for _, name := range enumNames {
				fmt.Printf("  %s: %v\n", name, sch.Enums[name])
			}
		}

		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
