// Package diff compares two result snapshots.
package diff

import (
	"sort"

	"ResultsMonitor/internal/model"
)

// Changed returns the entries of current whose final mark differs from previous.
// Only modules already known in previous are compared: a module that first
// appears in current is not reported.
func Changed(previous, current model.ResultSet) model.ResultSet {
	changed := model.ResultSet{}
	for module, r := range current {
		old, ok := previous[module]
		if !ok {
			continue
		}
		if old.FinalMark != r.FinalMark {
			changed[module] = r
		}
	}
	return changed
}

// Added lists modules present in current but not in previous, sorted.
func Added(previous, current model.ResultSet) []string {
	var added []string
	for module := range current {
		if _, ok := previous[module]; !ok {
			added = append(added, module)
		}
	}
	sort.Strings(added)
	return added
}
