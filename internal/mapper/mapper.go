package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldMapping maps a 0-based part index (as a decimal string) to the name
// of the field that receives that part
type FieldMapping map[string]string

// Parse reads "INDEX=FIELD" pairs into a mapping
func Parse(pairs []string) (FieldMapping, error) {
	m := make(FieldMapping)
	for _, pair := range pairs {
		idx, field, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q, expected INDEX=FIELD", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid part index in %q", pair)
		}
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("empty field name in %q", pair)
		}
		m.Set(n, field)
	}
	return m, nil
}

// Set maps part index i to field
func (m FieldMapping) Set(i int, field string) {
	m[strconv.Itoa(i)] = field
}

// Clear removes the mapping for part index i
func (m FieldMapping) Clear(i int) {
	delete(m, strconv.Itoa(i))
}

// Field returns the field mapped to part index i
func (m FieldMapping) Field(i int) (string, bool) {
	field, ok := m[strconv.Itoa(i)]
	return field, ok && field != ""
}

// Prune drops entries whose field no longer exists on the note type
func (m FieldMapping) Prune(fieldNames []string) FieldMapping {
	pruned := make(FieldMapping, len(m))
	for k, v := range m {
		if indexOf(fieldNames, v) >= 0 {
			pruned[k] = v
		}
	}
	return pruned
}

// String renders the mapping ordered by part index
func (m FieldMapping) String() string {
	keys := make([]int, 0, len(m))
	for k := range m {
		if n, err := strconv.Atoi(k); err == nil {
			keys = append(keys, n)
		}
	}
	sort.Ints(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d=%s", k, m[strconv.Itoa(k)])
	}
	return sb.String()
}

// AssignFields decides which field receives which part.
//
// With an empty mapping, part i goes to field i and extra parts are
// dropped. Otherwise only explicitly mapped indices are written; indices
// mapped to a field the note type does not have are skipped. The result
// maps field index to trimmed content. Inputs are left untouched.
func AssignFields(parts []string, mapping FieldMapping, fieldNames []string) map[int]string {
	writes := make(map[int]string)

	if len(mapping) == 0 {
		for i, part := range parts {
			if i >= len(fieldNames) {
				break
			}
			writes[i] = strings.TrimSpace(part)
		}
		return writes
	}

	for i, part := range parts {
		target, ok := mapping.Field(i)
		if !ok {
			continue
		}
		if idx := indexOf(fieldNames, target); idx >= 0 {
			writes[idx] = strings.TrimSpace(part)
		}
	}
	return writes
}

// TargetIndices returns the part indices that receive media for field.
// When none of the parts is mapped the field's own position is used.
func TargetIndices(numParts int, mapping FieldMapping, fieldNames []string, field string) []int {
	fieldIdx := indexOf(fieldNames, field)
	if fieldIdx < 0 {
		return nil
	}

	if !anyMapped(numParts, mapping) {
		if fieldIdx < numParts {
			return []int{fieldIdx}
		}
		return nil
	}

	var indices []int
	for i := 0; i < numParts; i++ {
		if target, ok := mapping.Field(i); ok && target == field {
			indices = append(indices, i)
		}
	}
	return indices
}

func anyMapped(numParts int, mapping FieldMapping) bool {
	for i := 0; i < numParts; i++ {
		if _, ok := mapping.Field(i); ok {
			return true
		}
	}
	return false
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
