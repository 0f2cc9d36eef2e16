package model

import "testing"

func TestNewOutcome_Kinds(t *testing.T) {
	one := ResultSet{"CS101": {FinalMark: 72}}
	tests := []struct {
		name    string
		results ResultSet
		dropped int
		want    OutcomeKind
	}{
		{"nil set", nil, 0, OutcomeEmpty},
		{"only a partial row", ResultSet{}, 4, OutcomeEmpty},
		{"complete rows", one, 0, OutcomeFull},
		{"rows and a partial tail", one, 2, OutcomePartial},
	}
	for _, tt := range tests {
		got := NewOutcome(tt.results, tt.dropped)
		if got.Kind != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got.Kind)
		}
		if got.Results == nil {
			t.Errorf("%s: results must never be nil", tt.name)
		}
	}
}

func TestResultSet_ModulesSorted(t *testing.T) {
	rs := ResultSet{"MAT144": {}, "CS101": {}, "EE201": {}}
	got := rs.Modules()
	want := []string{"CS101", "EE201", "MAT144"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
