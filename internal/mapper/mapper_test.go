package mapper

import (
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/delimit/internal/tokenizer"
)

func TestAssignFieldsPositional(t *testing.T) {
	parts := tokenizer.SplitParts("Paris;France", tokenizer.NewSet(';'))
	got := AssignFields(parts, nil, []string{"Front", "Back"})

	want := map[int]string{0: "Paris", 1: "France"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignFields() = %v, want %v", got, want)
	}
}

func TestAssignFieldsDropsExtraParts(t *testing.T) {
	got := AssignFields([]string{" a ", "b", "c"}, FieldMapping{}, []string{"Front", "Back"})

	want := map[int]string{0: "a", 1: "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignFields() = %v, want %v", got, want)
	}
}

func TestAssignFieldsMissingPartsLeaveFieldsUntouched(t *testing.T) {
	got := AssignFields([]string{"only"}, nil, []string{"Front", "Back", "Extra"})

	if len(got) != 1 || got[0] != "only" {
		t.Errorf("AssignFields() = %v, want only field 0 written", got)
	}
}

func TestAssignFieldsExplicitMapping(t *testing.T) {
	parts := tokenizer.SplitParts("cat / dog / fish", tokenizer.NewSet('/'))
	mapping := FieldMapping{"0": "Back"}

	got := AssignFields(parts, mapping, []string{"Front", "Back", "Extra"})

	// Only the mapped index is written, to the mapped field
	want := map[int]string{1: "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignFields() = %v, want %v", got, want)
	}
}

func TestAssignFieldsSkipsUnknownTargets(t *testing.T) {
	mapping := FieldMapping{"0": "Gone", "1": "Front", "5": "Back"}

	got := AssignFields([]string{"x", " y "}, mapping, []string{"Front", "Back"})

	want := map[int]string{0: "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignFields() = %v, want %v", got, want)
	}
}

func TestAssignFieldsIsIdempotent(t *testing.T) {
	parts := []string{" one ", "two "}
	fields := []string{"Front", "Back"}

	first := AssignFields(parts, nil, fields)
	second := AssignFields(parts, nil, fields)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated AssignFields differ: %v vs %v", first, second)
	}
	if parts[0] != " one " || fields[0] != "Front" {
		t.Error("AssignFields mutated its inputs")
	}
}

func TestAssignFieldsRoundTrip(t *testing.T) {
	set := tokenizer.NewSet(';')
	fields := []string{"Front", "Back", "Extra"}
	line := "  Paris ; France;capital  "

	writes := AssignFields(tokenizer.SplitParts(line, set), nil, fields)

	values := make([]string, 0, len(writes))
	for i := range fields {
		if v, ok := writes[i]; ok {
			values = append(values, v)
		}
	}
	rebuilt := strings.Join(values, ";")

	if want := "Paris;France;capital"; rebuilt != want {
		t.Errorf("rebuilt line = %q, want %q", rebuilt, want)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]string{"0=Front", " 2 = Back "})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := (FieldMapping{"0": "Front", "2": "Back"}); !reflect.DeepEqual(m, want) {
		t.Errorf("Parse() = %v, want %v", m, want)
	}
	if got := m.String(); got != "0=Front, 2=Back" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"Front", "x=Front", "-1=Front", "0="} {
		if _, err := Parse([]string{bad}); err == nil {
			t.Errorf("Parse(%q) expected error", bad)
		}
	}
}

func TestPrune(t *testing.T) {
	m := FieldMapping{"0": "Front", "1": "Removed"}
	got := m.Prune([]string{"Front", "Back"})

	if want := (FieldMapping{"0": "Front"}); !reflect.DeepEqual(got, want) {
		t.Errorf("Prune() = %v, want %v", got, want)
	}
}

func TestTargetIndices(t *testing.T) {
	fields := []string{"Front", "Back"}

	if got := TargetIndices(3, nil, fields, "Back"); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("positional TargetIndices() = %v", got)
	}
	if got := TargetIndices(1, nil, fields, "Back"); got != nil {
		t.Errorf("TargetIndices() beyond parts = %v, want nil", got)
	}

	mapping := FieldMapping{"0": "Back", "2": "Back"}
	if got := TargetIndices(3, mapping, fields, "Back"); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("mapped TargetIndices() = %v", got)
	}
}
