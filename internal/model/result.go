package model

import "sort"

// Result is one module's assessment state for a month. Marks are never negative;
// a blank or unreadable mark is stored as 0.
type Result struct {
	Month        string
	ClassMark    int
	ProgressMark int
	FinalMark    int
}

// ResultSet maps a module code to its current result.
type ResultSet map[string]Result

// Modules returns the module codes in sorted order.
func (rs ResultSet) Modules() []string {
	modules := make([]string, 0, len(rs))
	for m := range rs {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

// Clone returns a shallow copy of the set.
func (rs ResultSet) Clone() ResultSet {
	out := make(ResultSet, len(rs))
	for m, r := range rs {
		out[m] = r
	}
	return out
}

// Credentials are held in memory for the process lifetime and never written out.
type Credentials struct {
	Username string
	Password string
}
