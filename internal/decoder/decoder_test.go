package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ResultsMonitor/internal/model"
	"ResultsMonitor/internal/testutil"
)

func TestDecode_TwoRows(t *testing.T) {
	page := testutil.ResultsPage(
		testutil.Row("March", "CS101", "65", "", "72"),
		testutil.Row("  March  2024 ", "MAT144", "", "58", ""),
	)

	out := New(NewSelectorSchema("")).Decode(page)
	require.Equal(t, model.OutcomeFull, out.Kind)
	require.Equal(t, model.ResultSet{
		"CS101":  {Month: "March", ClassMark: 65, ProgressMark: 0, FinalMark: 72},
		"MAT144": {Month: "March 2024", ClassMark: 0, ProgressMark: 58, FinalMark: 0},
	}, out.Results)
}

func TestDecode_NoCellsIsEmpty(t *testing.T) {
	out := New(NewSelectorSchema("")).Decode([]byte(`<html><body><form><input name="lt"></form></body></html>`))
	require.Equal(t, model.OutcomeEmpty, out.Kind)
	require.True(t, out.Empty())
	require.Empty(t, out.Results)
	require.NotNil(t, out.Results)
}

func TestDecode_TrailingPartialRowDropped(t *testing.T) {
	rows := [][]string{
		testutil.Row("March", "CS101", "", "", "72"),
		{"April", "CS102", "10"},
	}
	out := New(NewSelectorSchema("")).Decode(testutil.ResultsPage(rows...))
	require.Equal(t, model.OutcomePartial, out.Kind)
	require.Equal(t, 3, out.Dropped)
	require.Len(t, out.Results, 1)
	require.Equal(t, 72, out.Results["CS101"].FinalMark)
}

func TestGroup_RecordCountIsFloorOfCellsOverSix(t *testing.T) {
	for n := 0; n <= 25; n++ {
		fields := make([]Field, n)
		for i := range fields {
			// every row gets a distinct module code in column 2
			fields[i] = Text(string(rune('A' + i/Columns)))
		}
		results, dropped := Group(fields)
		if len(results) != n/Columns {
			t.Errorf("%d cells: got %d records, want %d", n, len(results), n/Columns)
		}
		if dropped != n%Columns {
			t.Errorf("%d cells: got %d dropped, want %d", n, dropped, n%Columns)
		}
	}
}

func TestGroup_DuplicateModuleOverwrites(t *testing.T) {
	fields := StaticSchema{
		Text("March"), Text("CS101"), Text("1"), Text("2"), Text("50"), Text(""),
		Text("April"), Text("CS101"), Text("3"), Text("4"), Text("60"), Text(""),
	}
	results, _ := Group(fields)
	require.Equal(t, model.ResultSet{"CS101": {Month: "April", ClassMark: 3, ProgressMark: 4, FinalMark: 60}}, results)
}

func TestGroup_SixthCellIsNeverRead(t *testing.T) {
	fields := StaticSchema{Text("March"), Text("CS101"), Text("1"), Text("2"), Text("3"), Absent()}
	results, dropped := Group(fields)
	require.Zero(t, dropped)
	require.Equal(t, 3, results["CS101"].FinalMark)
}

func TestDecode_NestedElementIsAbsent(t *testing.T) {
	page := testutil.ResultsPage(testutil.Row("<b>March</b>", "CS101", "<i>65</i>", "", "80"))
	out := New(NewSelectorSchema("")).Decode(page)
	require.Equal(t, model.Result{Month: "", ClassMark: 0, ProgressMark: 0, FinalMark: 80}, out.Results["CS101"])
}

func TestDecode_MalformedMarksBecomeZero(t *testing.T) {
	page := testutil.ResultsPage(testutil.Row("March", "CS101", "abc", "-4", "72.5"))
	out := New(NewSelectorSchema("")).Decode(page)
	require.Equal(t, model.Result{Month: "March"}, out.Results["CS101"])
}

func TestDecode_CustomSelector(t *testing.T) {
	page := []byte(`<div class="r"><p>May</p><p>EE201</p><p>1</p><p>2</p><p>3</p><p></p></div>`)
	out := New(NewSelectorSchema("div.r > p")).Decode(page)
	require.Equal(t, model.ResultSet{"EE201": {Month: "May", ClassMark: 1, ProgressMark: 2, FinalMark: 3}}, out.Results)
}

type failingSchema struct{}

func (failingSchema) Fields(_ []byte) ([]Field, error) { return nil, errors.New("boom") }

func TestDecode_SchemaErrorDegradesToEmpty(t *testing.T) {
	out := New(failingSchema{}).Decode(nil)
	require.Equal(t, model.OutcomeEmpty, out.Kind)
}

func TestCellField_CollapsesWhitespace(t *testing.T) {
	fields, err := NewSelectorSchema("").Fields(testutil.ResultsPage(
		[]string{"\n  Semester \t one  ", "", "   "},
	))
	require.NoError(t, err)
	require.Equal(t, []Field{Text("Semester one"), Absent(), Text("")}, fields)
}
