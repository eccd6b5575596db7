package migrate

import (
	"fmt"
	"sort"

	"github.com/quillvault/quill/internal/linkfmt"
	"github.com/quillvault/quill/internal/schema"
)

// ChangeKind discriminates the per-file mutation variants.
type ChangeKind string

const (
	ChangeSet    ChangeKind = "set"
	ChangeDelete ChangeKind = "delete"
	ChangeRename ChangeKind = "rename"
)

// Change records one field mutation on one file. It carries enough to
// render a diff line and to be reversed by hand if needed.
type Change struct {
	Kind     ChangeKind  `json:"kind"`
	Field    string      `json:"field"`
	NewField string      `json:"new_field,omitempty"` // rename only
	OldValue interface{} `json:"old_value,omitempty"`
	NewValue interface{} `json:"new_value,omitempty"`
}

// Describe renders the change as a one-line human-readable diff.
func (c Change) Describe() string {
	switch c.Kind {
	case ChangeSet:
		if c.OldValue == nil {
			return fmt.Sprintf("set %s = %v", c.Field, c.NewValue)
		}
		return fmt.Sprintf("set %s: %v -> %v", c.Field, c.OldValue, c.NewValue)
	case ChangeDelete:
		return fmt.Sprintf("delete %s (was %v)", c.Field, c.OldValue)
	case ChangeRename:
		return fmt.Sprintf("rename %s -> %s", c.Field, c.NewField)
	default:
		return string(c.Kind)
	}
}

// MappingKey builds the value-mapping key a remove-enum-value operation
// looks up its replacement under.
func MappingKey(enum, value string) string {
	return "enum:" + enum + ":" + value
}

// computeChanges calculates the ordered change list one file needs for the
// given operations. Changes are applied to the working copy as they are
// computed so later operations observe earlier effects; the idempotency
// guards per operation make re-running the same plan a no-op.
func computeChanges(fm map[string]interface{}, resolvedType string, sch *schema.Schema, ops []Op, mappings map[string]string) []Change {
	var changes []Change

	for _, op := range ops {
		var change *Change
		switch op.Kind {
		case OpAddField:
			change = computeAddField(fm, op)
		case OpRemoveField:
			change = computeRemoveField(fm, op)
		case OpRenameField:
			change = computeRenameField(fm, op)
		case OpNormalizeLinks:
			changes = append(changes, computeNormalizeLinks(fm, resolvedType, sch, op)...)
			continue
		case OpRemoveEnumValue:
			change = computeReplaceEnumValue(fm, op.Value, replacementFor(op, mappings))
		case OpRenameEnumValue:
			change = computeReplaceEnumValue(fm, op.From, op.To)
		case OpAddEnumValue, OpAddType, OpRemoveType, OpRenameType, OpReparentType:
			// Structural-only: no frontmatter change.
		}
		if change != nil {
			applyChange(fm, *change)
			changes = append(changes, *change)
		}
	}

	return changes
}

// computeAddField emits a set only when the field is absent and the
// operation carries a default.
func computeAddField(fm map[string]interface{}, op Op) *Change {
	if op.Default == nil {
		return nil
	}
	if _, present := fm[op.Field]; present {
		return nil
	}
	return &Change{Kind: ChangeSet, Field: op.Field, NewValue: op.Default}
}

func computeRemoveField(fm map[string]interface{}, op Op) *Change {
	oldValue, present := fm[op.Field]
	if !present {
		return nil
	}
	return &Change{Kind: ChangeDelete, Field: op.Field, OldValue: oldValue}
}

// computeRenameField never overwrites an existing value at the target name.
func computeRenameField(fm map[string]interface{}, op Op) *Change {
	oldValue, present := fm[op.From]
	if !present {
		return nil
	}
	if _, occupied := fm[op.To]; occupied {
		return nil
	}
	return &Change{Kind: ChangeRename, Field: op.From, NewField: op.To, OldValue: oldValue}
}

// computeNormalizeLinks rewrites every relation field the file's resolved
// type declares into the target notation. An array that changes is reported
// as a single change carrying the whole normalized value.
func computeNormalizeLinks(fm map[string]interface{}, resolvedType string, sch *schema.Schema, op Op) []Change {
	relationFields := sch.RelationFields(resolvedType)
	sort.Strings(relationFields)

	var changes []Change
	for _, field := range relationFields {
		value, present := fm[field]
		if !present {
			continue
		}

		switch v := value.(type) {
		case string:
			if linkfmt.InFormat(v, op.ToFormat) {
				continue
			}
			change := Change{Kind: ChangeSet, Field: field, OldValue: v, NewValue: linkfmt.Convert(v, op.ToFormat)}
			applyChange(fm, change)
			changes = append(changes, change)
		case []interface{}:
			normalized := make([]interface{}, len(v))
			changed := false
			for i, item := range v {
				normalized[i] = item
				s, isString := item.(string)
				if !isString || linkfmt.InFormat(s, op.ToFormat) {
					continue
				}
				normalized[i] = linkfmt.Convert(s, op.ToFormat)
				changed = true
			}
			if !changed {
				continue
			}
			change := Change{Kind: ChangeSet, Field: field, OldValue: v, NewValue: normalized}
			applyChange(fm, change)
			changes = append(changes, change)
		}
	}
	return changes
}

// replacementFor resolves the replacement value for a remove-enum-value
// operation: an externally supplied mapping wins over an inline map_to.
func replacementFor(op Op, mappings map[string]string) string {
	if mapped, ok := mappings[MappingKey(op.Enum, op.Value)]; ok && mapped != "" {
		return mapped
	}
	return op.MapTo
}

// computeReplaceEnumValue scans frontmatter for an exact match of oldValue
// and replaces it on the first field that contains one. An empty
// replacement means the operation lacks its disambiguation and is skipped:
// data is never deleted without a supplied successor.
func computeReplaceEnumValue(fm map[string]interface{}, oldValue, replacement string) *Change {
	if replacement == "" {
		return nil
	}

	fields := make([]string, 0, len(fm))
	for field := range fm {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		switch v := fm[field].(type) {
		case string:
			if v == oldValue {
				return &Change{Kind: ChangeSet, Field: field, OldValue: v, NewValue: replacement}
			}
		case []interface{}:
			matched := false
			replaced := make([]interface{}, len(v))
			for i, item := range v {
				replaced[i] = item
				if s, ok := item.(string); ok && s == oldValue {
					replaced[i] = replacement
					matched = true
				}
			}
			if matched {
				return &Change{Kind: ChangeSet, Field: field, OldValue: v, NewValue: replaced}
			}
		}
	}
	return nil
}

// applyChange mutates a frontmatter map with one computed change.
func applyChange(fm map[string]interface{}, c Change) {
	switch c.Kind {
	case ChangeSet:
		fm[c.Field] = c.NewValue
	case ChangeDelete:
		delete(fm, c.Field)
	case ChangeRename:
		fm[c.NewField] = fm[c.Field]
		delete(fm, c.Field)
	}
}
