package domain

import "time"

type WorkerState string

const (
	WorkerActivating WorkerState = "activating"
	WorkerFarming    WorkerState = "farming"
	WorkerStopped    WorkerState = "stopped"
)

// WorkerStats is a point-in-time snapshot of one worker's counters. Each
// worker owns its counters locally and publishes copies; snapshots are
// values, never shared mutable state.
type WorkerStats struct {
	Proxy              NetworkPath
	State              WorkerState
	Activations        int64
	ActivationFailures int64
	ReportsAccepted    int64
	ReportsFailed      int64
	Points             float64
	UpdatedAt          time.Time
}
