package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SchemaFileName is the schema definition file at the vault root.
const SchemaFileName = "schema.yaml"

// Load loads the schema from a vault's schema.yaml file.
// Returns an empty schema if the file doesn't exist.
func Load(vaultPath string) (*Schema, error) {
	schemaPath := filepath.Join(vaultPath, SchemaFileName)

	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		return NewSchema(), nil
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
	}

	var sch Schema
	if err := yaml.Unmarshal(data, &sch); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", schemaPath, err)
	}

	normalize(&sch)
	return &sch, nil
}

// normalize initializes nil maps so callers never need nil checks.
func normalize(sch *Schema) {
	if sch.Types == nil {
		sch.Types = make(map[string]*TypeDefinition)
	}
	if sch.Enums == nil {
		sch.Enums = make(map[string][]string)
	}
	for _, typeDef := range sch.Types {
		if typeDef != nil && typeDef.Fields == nil {
			typeDef.Fields = make(map[string]*FieldDefinition)
		}
	}
}

// CreateDefault creates a starter schema.yaml file in the vault.
func CreateDefault(vaultPath string) error {
	schemaPath := filepath.Join(vaultPath, SchemaFileName)

	defaultSchema := `# Quill Schema Configuration
# Define your document types and enums here.
#
# version: bump when you change the schema, then run 'quill migrate'.
# links: vault-wide notation for relation fields (wikilink or markdown).

version: "1"
links: wikilink

types:
  note:
    fields:
      tags:
        type: string[]

  task:
    parent: note
    fields:
      status:
        type: enum
        enum: status
        default: todo
      due:
        type: date
      project:
        type: ref
        target: project

  project:
    parent: note
    fields:
      status:
        type: enum
        enum: status

enums:
  status: [todo, in_progress, done]
`

	if err := os.WriteFile(schemaPath, []byte(defaultSchema), 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	return nil
}
