package decoder

import (
	"log"
	"strconv"

	"ResultsMonitor/internal/model"
)

// Columns is the fixed number of cells per results row:
// month, module, class mark, progress mark, final mark and one unused cell.
const Columns = 6

// Decoder turns the flat cell sequence of a results page into keyed records.
type Decoder struct {
	Schema Schema
}

// New returns a Decoder reading cells through schema.
func New(schema Schema) *Decoder {
	return &Decoder{Schema: schema}
}

// Decode never fails. A page the schema cannot read, or one with no complete
// row, yields an empty outcome, which after login means the credentials were rejected.
func (d *Decoder) Decode(page []byte) model.Outcome {
	fields, err := d.Schema.Fields(page)
	if err != nil {
		log.Printf("[WARN] decode results page: %v", err)
		return model.NewOutcome(nil, 0)
	}
	results, dropped := Group(fields)
	return model.NewOutcome(results, dropped)
}

// Group walks fields in order and closes a record on every sixth cell. The
// sixth cell itself is never read. Duplicate modules overwrite earlier rows and
// a trailing incomplete row is returned as the dropped count.
func Group(fields []Field) (model.ResultSet, int) {
	results := model.ResultSet{}
	row := make([]Field, 0, Columns-1)
	for i, f := range fields {
		if (i+1)%Columns == 0 {
			module, r := record(row)
			results[module] = r
			row = row[:0]
			continue
		}
		row = append(row, f)
	}
	return results, len(fields) % Columns
}

func record(row []Field) (string, model.Result) {
	return row[1].Text, model.Result{
		Month:        row[0].Text,
		ClassMark:    mark(row[2]),
		ProgressMark: mark(row[3]),
		FinalMark:    mark(row[4]),
	}
}

// mark treats blank, absent, malformed and negative values as 0.
func mark(f Field) int {
	if !f.Present || f.Text == "" {
		return 0
	}
	n, err := strconv.Atoi(f.Text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
