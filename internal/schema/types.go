// Package schema handles schema loading, snapshots, and type resolution.
package schema

// Schema represents the complete schema definition loaded from schema.yaml.
type Schema struct {
	Version string                     `yaml:"version,omitempty" json:"version,omitempty"`
	Links   LinkFormat                 `yaml:"links,omitempty" json:"links,omitempty"`
	Types   map[string]*TypeDefinition `yaml:"types" json:"types"`
	Enums   map[string][]string        `yaml:"enums,omitempty" json:"enums,omitempty"`
}

// LinkFormat is the vault-wide notation for relation field values.
type LinkFormat string

const (
	LinkFormatWikilink LinkFormat = "wikilink"
	LinkFormatMarkdown LinkFormat = "markdown"
)

// NewSchema creates an empty schema with initialized maps.
func NewSchema() *Schema {
	return &Schema{
		Types: make(map[string]*TypeDefinition),
		Enums: make(map[string][]string),
	}
}

// TypeDefinition defines a document type (task, person, project, etc.).
type TypeDefinition struct {
	// Parent names the type this one inherits fields from.
	Parent string                      `yaml:"parent,omitempty" json:"parent,omitempty"`
	Fields map[string]*FieldDefinition `yaml:"fields" json:"fields"`
}

// FieldDefinition defines a field within a type.
type FieldDefinition struct {
	Type     FieldType   `yaml:"type" json:"type"`
	Required bool        `yaml:"required,omitempty" json:"required,omitempty"`
	Default  interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Enum     string      `yaml:"enum,omitempty" json:"enum,omitempty"`     // For enum types: named enum reference
	Target   string      `yaml:"target,omitempty" json:"target,omitempty"` // For ref types
}

// FieldType represents the type of a field.
type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeStringArray FieldType = "string[]"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeBool        FieldType = "bool"
	FieldTypeEnum        FieldType = "enum"
	FieldTypeRef         FieldType = "ref"
	FieldTypeRefArray    FieldType = "ref[]"
)

// IsRelation returns true for field types whose values are document links.
func (ft FieldType) IsRelation() bool {
	return ft == FieldTypeRef || ft == FieldTypeRefArray
}

// FieldsOf returns the effective field set of a type, including fields
// inherited through the parent chain. Fields declared on the type itself
// shadow inherited fields of the same name. Returns nil for unknown types.
func (s *Schema) FieldsOf(typeName string) map[string]*FieldDefinition {
	if s == nil || s.Types == nil {
		return nil
	}
	if _, ok := s.Types[typeName]; !ok {
		return nil
	}

	merged := make(map[string]*FieldDefinition)
	seen := make(map[string]bool)
	for name := typeName; name != "" && !seen[name]; {
		seen[name] = true
		td := s.Types[name]
		if td == nil {
			break
		}
		for fieldName, def := range td.Fields {
			if _, shadowed := merged[fieldName]; !shadowed {
				merged[fieldName] = def
			}
		}
		name = td.Parent
	}
	return merged
}

// RelationFields returns the names of the type's relation (ref/ref[]) fields,
// including inherited ones.
func (s *Schema) RelationFields(typeName string) []string {
	var names []string
	for name, def := range s.FieldsOf(typeName) {
		if def != nil && def.Type.IsRelation() {
			names = append(names, name)
		}
	}
	return names
}

// ParentChainDepth returns the number of ancestors above the given type.
// Cycles terminate the walk rather than looping.
func (s *Schema) ParentChainDepth(typeName string) int {
	depth := 0
	seen := map[string]bool{typeName: true}
	td := s.Types[typeName]
	for td != nil && td.Parent != "" && !seen[td.Parent] {
		seen[td.Parent] = true
		depth++
		td = s.Types[td.Parent]
	}
	return depth
}
