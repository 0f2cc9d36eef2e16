package recorder

import "ResultsMonitor/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBaseline(_ model.ResultSet) error { return nil }

func (n *NoopRecorder) RecordChanges(_ model.ResultSet) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
