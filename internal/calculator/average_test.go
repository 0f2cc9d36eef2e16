package calculator

import (
	"errors"
	"testing"

	"ResultsMonitor/internal/model"
)

func TestNonZeroAverage(t *testing.T) {
	results := model.ResultSet{
		"CS101": {FinalMark: 0},
		"CS102": {FinalMark: 70},
		"CS103": {FinalMark: 85},
	}
	avg, err := NonZeroAverage(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 77.5 {
		t.Errorf("expected 77.5, got %v", avg)
	}
}

func TestNonZeroAverage_AllZero(t *testing.T) {
	tests := []model.ResultSet{
		{},
		{"CS101": {FinalMark: 0}, "CS102": {ClassMark: 50}},
	}
	for _, results := range tests {
		if _, err := NonZeroAverage(results); !errors.Is(err, ErrNoMarks) {
			t.Errorf("expected ErrNoMarks for %v, got %v", results, err)
		}
	}
}
