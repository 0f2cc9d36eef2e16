package calculator

import (
	"errors"

	"ResultsMonitor/internal/model"
)

// ErrNoMarks is returned when no module has a non-zero final mark yet.
var ErrNoMarks = errors.New("no non-zero final marks to average")

// NonZeroAverage returns the mean final mark over modules whose final mark is not 0.
func NonZeroAverage(results model.ResultSet) (float64, error) {
	sum, count := 0, 0
	for _, r := range results {
		if r.FinalMark == 0 {
			continue
		}
		sum += r.FinalMark
		count++
	}
	if count == 0 {
		return 0, ErrNoMarks
	}
	return float64(sum) / float64(count), nil
}
