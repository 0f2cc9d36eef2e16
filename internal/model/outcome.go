package model

// OutcomeKind tags how much of a results page could be decoded.
type OutcomeKind string

const (
	OutcomeEmpty   OutcomeKind = "EMPTY"
	OutcomePartial OutcomeKind = "PARTIAL"
	OutcomeFull    OutcomeKind = "FULL"
)

// Outcome is the result of decoding one page.
// An empty outcome after login is the only signal of rejected credentials.
type Outcome struct {
	Kind    OutcomeKind
	Results ResultSet
	Dropped int // trailing cells that did not complete a row
}

// NewOutcome tags a decoded set.
func NewOutcome(results ResultSet, dropped int) Outcome {
	if results == nil {
		results = ResultSet{}
	}
	kind := OutcomeFull
	switch {
	case len(results) == 0:
		kind = OutcomeEmpty
	case dropped > 0:
		kind = OutcomePartial
	}
	return Outcome{Kind: kind, Results: results, Dropped: dropped}
}

// Empty reports whether no complete record was decoded.
func (o Outcome) Empty() bool { return o.Kind == OutcomeEmpty }
