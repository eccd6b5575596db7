// Package migrate implements the schema migration engine: diffing two schema
// snapshots into a typed plan of structural operations, and executing that
// plan across a vault's frontmatter.
package migrate

import (
	"fmt"

	"github.com/quillvault/quill/internal/schema"
)

// OpKind discriminates the migration operation variants.
type OpKind string

const (
	OpAddField        OpKind = "add-field"
	OpRemoveField     OpKind = "remove-field"
	OpRenameField     OpKind = "rename-field"
	OpAddType         OpKind = "add-type"
	OpRemoveType      OpKind = "remove-type"
	OpRenameType      OpKind = "rename-type"
	OpReparentType    OpKind = "reparent-type"
	OpAddEnumValue    OpKind = "add-enum-value"
	OpRemoveEnumValue OpKind = "remove-enum-value"
	OpRenameEnumValue OpKind = "rename-enum-value"
	OpNormalizeLinks  OpKind = "normalize-links"
)

// Op is one structural migration operation. Which fields are meaningful
// depends on Kind; everything else stays zero.
type Op struct {
	Kind OpKind `yaml:"op" json:"op"`

	// Field operations (add-field, remove-field, rename-field).
	TargetType string      `yaml:"target_type,omitempty" json:"target_type,omitempty"`
	Field      string      `yaml:"field,omitempty" json:"field,omitempty"`
	Default    interface{} `yaml:"default,omitempty" json:"default,omitempty"`

	// Renames (rename-field, rename-type, rename-enum-value).
	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`

	// Type operations (add-type, remove-type, reparent-type).
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
	OldParent string `yaml:"old_parent,omitempty" json:"old_parent,omitempty"`
	NewParent string `yaml:"new_parent,omitempty" json:"new_parent,omitempty"`

	// Enum operations (add/remove/rename-enum-value).
	Enum  string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	MapTo string `yaml:"map_to,omitempty" json:"map_to,omitempty"`

	// normalize-links.
	ToFormat schema.LinkFormat `yaml:"to_format,omitempty" json:"to_format,omitempty"`
}

// Deterministic reports whether the operation can be auto-applied without
// risking data loss. Only purely additive operations qualify: everything
// that removes or renames is a guess or a deletion and needs confirmation,
// as does the vault-wide link rewrite.
func (o Op) Deterministic() bool {
	switch o.Kind {
	case OpAddField, OpAddType, OpAddEnumValue:
		return true
	case OpRemoveField, OpRenameField, OpRemoveType, OpRenameType,
		OpReparentType, OpRemoveEnumValue, OpRenameEnumValue, OpNormalizeLinks:
		return false
	default:
		return false
	}
}

// AffectedType returns the type name the operation is scoped to, or "" for
// operations that apply to every file regardless of type.
func (o Op) AffectedType() string {
	switch o.Kind {
	case OpAddField, OpRemoveField, OpRenameField:
		return o.TargetType
	default:
		return ""
	}
}

// Describe renders the operation as a one-line human-readable summary.
func (o Op) Describe() string {
	switch o.Kind {
	case OpAddField:
		if o.Default != nil {
			return fmt.Sprintf("add field %s.%s (default: %v)", o.TargetType, o.Field, o.Default)
		}
		return fmt.Sprintf("add field %s.%s", o.TargetType, o.Field)
	case OpRemoveField:
		return fmt.Sprintf("remove field %s.%s", o.TargetType, o.Field)
	case OpRenameField:
		return fmt.Sprintf("rename field %s.%s -> %s", o.TargetType, o.From, o.To)
	case OpAddType:
		return fmt.Sprintf("add type %s", o.Type)
	case OpRemoveType:
		return fmt.Sprintf("remove type %s", o.Type)
	case OpRenameType:
		return fmt.Sprintf("rename type %s -> %s", o.From, o.To)
	case OpReparentType:
		return fmt.Sprintf("reparent type %s: %s -> %s", o.Type, orNone(o.OldParent), orNone(o.NewParent))
	case OpAddEnumValue:
		return fmt.Sprintf("add enum value %s: %s", o.Enum, o.Value)
	case OpRemoveEnumValue:
		if o.MapTo != "" {
			return fmt.Sprintf("remove enum value %s: %s (map to %s)", o.Enum, o.Value, o.MapTo)
		}
		return fmt.Sprintf("remove enum value %s: %s", o.Enum, o.Value)
	case OpRenameEnumValue:
		return fmt.Sprintf("rename enum value %s: %s -> %s", o.Enum, o.From, o.To)
	case OpNormalizeLinks:
		return fmt.Sprintf("normalize links to %s format", o.ToFormat)
	default:
		return string(o.Kind)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Plan is the ordered, classified output of a schema diff. It is produced
// once per invocation and read-only thereafter.
type Plan struct {
	FromVersion      string `yaml:"from_version" json:"from_version"`
	ToVersion        string `yaml:"to_version" json:"to_version"`
	Deterministic    []Op   `yaml:"deterministic" json:"deterministic"`
	NonDeterministic []Op   `yaml:"non_deterministic" json:"non_deterministic"`
}

// HasChanges reports whether the plan contains any operations.
func (p *Plan) HasChanges() bool {
	return len(p.Deterministic) > 0 || len(p.NonDeterministic) > 0
}

// Ops returns the combined operation list, deterministic operations first.
func (p *Plan) Ops() []Op {
	ops := make([]Op, 0, len(p.Deterministic)+len(p.NonDeterministic))
	ops = append(ops, p.Deterministic...)
	ops = append(ops, p.NonDeterministic...)
	return ops
}

func (p *Plan) add(op Op) {
	if op.Deterministic() {
		p.Deterministic = append(p.Deterministic, op)
	} else {
		p.NonDeterministic = append(p.NonDeterministic, op)
	}
}
