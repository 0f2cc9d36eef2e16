package recorder

import "ResultsMonitor/internal/model"

// EventType tags why a set of results was recorded.
type EventType string

const (
	EventBaseline EventType = "BASELINE"
	EventChange   EventType = "CHANGE"
)

// Recorder keeps a write-only history of observed results. It is never read
// back by the monitor: every run starts from a fresh baseline.
type Recorder interface {
	RecordBaseline(results model.ResultSet) error
	RecordChanges(changed model.ResultSet) error
	Close() error
}
