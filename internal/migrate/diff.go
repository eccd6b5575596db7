package migrate

import (
	"sort"

	"github.com/quillvault/quill/internal/schema"
)

// DiffSchemas compares the snapshot taken at the last migration against the
// current schema and produces a migration plan.
//
// Rename detection is heuristic: structural shape first, name edit-distance
// as tie-break. When more than one candidate is equally plausible the diff
// does not guess and reports independent add+remove operations instead — a
// missed rename is recoverable, a wrong merge is not.
func DiffSchemas(old, new *schema.Schema, fromVersion, toVersion string) *Plan {
	plan := &Plan{FromVersion: fromVersion, ToVersion: toVersion}

	typeRenames := diffTypes(old, new, plan)
	diffFields(old, new, typeRenames, plan)
	diffEnums(old, new, plan)
	diffLinkFormat(old, new, plan)

	return plan
}

// diffTypes emits add/remove/rename/reparent type operations and returns the
// detected old-name -> new-name rename mapping.
func diffTypes(old, new *schema.Schema, plan *Plan) map[string]string {
	var removed, added []string
	for _, name := range sortedTypeNames(old) {
		if _, ok := new.Types[name]; !ok {
			removed = append(removed, name)
		}
	}
	for _, name := range sortedTypeNames(new) {
		if _, ok := old.Types[name]; !ok {
			added = append(added, name)
		}
	}

	renames := matchTypeRenames(old, new, removed, added)

	consumed := make(map[string]bool)
	for _, newName := range renames {
		consumed[newName] = true
	}

	for _, name := range added {
		if !consumed[name] {
			plan.add(Op{Kind: OpAddType, Type: name})
		}
	}
	for _, name := range removed {
		if newName, ok := renames[name]; ok {
			plan.add(Op{Kind: OpRenameType, From: name, To: newName})
		} else {
			plan.add(Op{Kind: OpRemoveType, Type: name})
		}
	}

	// Inheritance-pointer changes on types present in both schemas
	// (directly or via a detected rename).
	for _, oldName := range sortedTypeNames(old) {
		newName, ok := matchedTypeName(oldName, new, renames)
		if !ok {
			continue
		}
		oldParent := old.Types[oldName].Parent
		newParent := new.Types[newName].Parent

		// A parent that was itself renamed is still the same parent.
		effectiveOldParent := oldParent
		if mapped, wasRenamed := renames[oldParent]; wasRenamed {
			effectiveOldParent = mapped
		}
		if effectiveOldParent != newParent {
			plan.add(Op{Kind: OpReparentType, Type: newName, OldParent: oldParent, NewParent: newParent})
		}
	}

	return renames
}

// matchTypeRenames pairs removed types with added types that look like the
// same type under a new name. A pair is accepted only when it is unambiguous
// in both directions.
func matchTypeRenames(old, new *schema.Schema, removed, added []string) map[string]string {
	candidates := make(map[string][]string) // removed -> plausible added
	suitors := make(map[string]int)         // added -> number of removed types that want it

	for _, oldName := range removed {
		for _, newName := range added {
			if typeStructurallySimilar(old, oldName, new, newName) {
				candidates[oldName] = append(candidates[oldName], newName)
				suitors[newName]++
			}
		}
	}

	renames := make(map[string]string)
	for _, oldName := range removed {
		cands := candidates[oldName]
		if len(cands) > 1 {
			// Tie-break on name similarity; ambiguous ties stay unmatched.
			cands = closestByName(oldName, cands)
		}
		if len(cands) == 1 && suitors[cands[0]] == 1 {
			renames[oldName] = cands[0]
		}
	}
	return renames
}

// typeStructurallySimilar reports whether the added type newName looks like
// a rename of the removed type oldName: the old declared field-name set is
// the same as or a subset of the new one, and the parent chains have the
// same shape.
func typeStructurallySimilar(old *schema.Schema, oldName string, new *schema.Schema, newName string) bool {
	oldTD := old.Types[oldName]
	newTD := new.Types[newName]
	if oldTD == nil || newTD == nil {
		return false
	}

	for fieldName := range oldTD.Fields {
		if _, ok := newTD.Fields[fieldName]; !ok {
			return false
		}
	}

	return old.ParentChainDepth(oldName) == new.ParentChainDepth(newName)
}

// diffFields emits field operations for every type considered "the same"
// across old and new, matched directly or via a detected type rename.
func diffFields(old, new *schema.Schema, typeRenames map[string]string, plan *Plan) {
	for _, oldName := range sortedTypeNames(old) {
		newName, ok := matchedTypeName(oldName, new, typeRenames)
		if !ok {
			continue
		}
		oldFields := old.Types[oldName].Fields
		newFields := new.Types[newName].Fields

		var removed, added []string
		for _, f := range sortedFieldNames(oldFields) {
			if _, present := newFields[f]; !present {
				removed = append(removed, f)
			}
		}
		for _, f := range sortedFieldNames(newFields) {
			if _, present := oldFields[f]; !present {
				added = append(added, f)
			}
		}

		renames := matchFieldRenames(oldFields, newFields, removed, added)

		consumed := make(map[string]bool)
		for _, to := range renames {
			consumed[to] = true
		}

		for _, f := range added {
			if consumed[f] {
				continue
			}
			op := Op{Kind: OpAddField, TargetType: newName, Field: f}
			if def := newFields[f]; def != nil && def.Default != nil {
				op.Default = def.Default
			}
			plan.add(op)
		}
		for _, f := range removed {
			if to, isRename := renames[f]; isRename {
				plan.add(Op{Kind: OpRenameField, TargetType: newName, From: f, To: to})
			} else {
				plan.add(Op{Kind: OpRemoveField, TargetType: newName, Field: f})
			}
		}
	}
}

// matchFieldRenames pairs removed fields with same-shape added fields.
func matchFieldRenames(oldFields, newFields map[string]*schema.FieldDefinition, removed, added []string) map[string]string {
	candidates := make(map[string][]string)
	suitors := make(map[string]int)

	for _, from := range removed {
		for _, to := range added {
			if sameFieldShape(oldFields[from], newFields[to]) {
				candidates[from] = append(candidates[from], to)
				suitors[to]++
			}
		}
	}

	renames := make(map[string]string)
	for _, from := range removed {
		cands := candidates[from]
		if len(cands) > 1 {
			cands = closestByName(from, cands)
		}
		if len(cands) == 1 && suitors[cands[0]] == 1 {
			renames[from] = cands[0]
		}
	}
	return renames
}

// sameFieldShape reports whether two field definitions are interchangeable:
// same value type and the same enum/ref binding.
func sameFieldShape(a, b *schema.FieldDefinition) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type == b.Type && a.Enum == b.Enum && a.Target == b.Target
}

// diffEnums emits enum value operations. A removed value with exactly one
// plausible successor among the added values becomes a rename; anything less
// certain is reported as an explicit removal.
func diffEnums(old, new *schema.Schema, plan *Plan) {
	names := make(map[string]bool)
	for name := range old.Enums {
		names[name] = true
	}
	for name := range new.Enums {
		names[name] = true
	}

	for _, name := range sortedKeys(names) {
		oldValues := stringSet(old.Enums[name])
		newValues := stringSet(new.Enums[name])

		var removed, added []string
		for _, v := range old.Enums[name] {
			if !newValues[v] {
				removed = append(removed, v)
			}
		}
		for _, v := range new.Enums[name] {
			if !oldValues[v] {
				added = append(added, v)
			}
		}

		renames := matchEnumRenames(removed, added)

		consumed := make(map[string]bool)
		for _, to := range renames {
			consumed[to] = true
		}

		for _, v := range added {
			if !consumed[v] {
				plan.add(Op{Kind: OpAddEnumValue, Enum: name, Value: v})
			}
		}
		for _, v := range removed {
			if to, isRename := renames[v]; isRename {
				plan.add(Op{Kind: OpRenameEnumValue, Enum: name, From: v, To: to})
			} else {
				plan.add(Op{Kind: OpRemoveEnumValue, Enum: name, Value: v})
			}
		}
	}
}

// matchEnumRenames pairs removed enum values with close-named added values.
func matchEnumRenames(removed, added []string) map[string]string {
	suitors := make(map[string]int)
	best := make(map[string]string)

	for _, from := range removed {
		cands := closestByName(from, added)
		if len(cands) != 1 {
			continue
		}
		to := cands[0]
		// Only treat near-identical names as a rename.
		if editDistance(from, to) > len(from)/2 {
			continue
		}
		best[from] = to
		suitors[to]++
	}

	renames := make(map[string]string)
	for from, to := range best {
		if suitors[to] == 1 {
			renames[from] = to
		}
	}
	return renames
}

// diffLinkFormat appends a vault-wide link normalization when the schema's
// link-notation convention changed.
func diffLinkFormat(old, new *schema.Schema, plan *Plan) {
	if effectiveLinkFormat(old) != effectiveLinkFormat(new) {
		plan.add(Op{Kind: OpNormalizeLinks, ToFormat: effectiveLinkFormat(new)})
	}
}

func effectiveLinkFormat(s *schema.Schema) schema.LinkFormat {
	if s.Links == schema.LinkFormatMarkdown {
		return schema.LinkFormatMarkdown
	}
	return schema.LinkFormatWikilink
}

// matchedTypeName maps an old type name to its counterpart in the new
// schema: itself if still present, or its rename target.
func matchedTypeName(oldName string, new *schema.Schema, renames map[string]string) (string, bool) {
	if _, ok := new.Types[oldName]; ok {
		return oldName, true
	}
	if newName, ok := renames[oldName]; ok {
		return newName, true
	}
	return "", false
}

// closestByName returns the candidates with the minimal edit distance to
// name. A unique minimum yields a single-element slice; ties return all
// tied candidates so callers can refuse to guess.
func closestByName(name string, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	bestDist := -1
	var best []string
	for _, c := range candidates {
		d := editDistance(name, c)
		switch {
		case bestDist == -1 || d < bestDist:
			bestDist = d
			best = []string{c}
		case d == bestDist:
			best = append(best, c)
		}
	}
	return best
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func sortedTypeNames(s *schema.Schema) []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedFieldNames(fields map[string]*schema.FieldDefinition) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
