package domain

// SessionHandle is the server-issued token representing an active node
// session. It is replaced wholesale on every re-activation, never mutated.
type SessionHandle struct {
	// LastStartTime is the dashboard's "lastStartTime" value in unix
	// milliseconds. It is echoed back verbatim on every liveness report.
	LastStartTime int64
}

type LivenessStatus string

const (
	// LivenessAccepted means the dashboard acknowledged the report; the
	// session stays valid and points may have accrued.
	LivenessAccepted LivenessStatus = "accepted"
	// LivenessRejected means the dashboard answered but did not accept the
	// report (non-2xx, unparseable body, or success=false).
	LivenessRejected LivenessStatus = "rejected"
	// LivenessUnreachable means the request never produced a response
	// (connect failure, timeout).
	LivenessUnreachable LivenessStatus = "unreachable"
)

// LivenessOutcome classifies one liveness report.
//
// Policy: the observed protocol gives no reliable way to tell a transient
// failure from an expired session, so workers treat Rejected and Unreachable
// identically and re-activate. The two statuses are still kept apart for
// logging and stats.
type LivenessOutcome struct {
	Status LivenessStatus
	// Points is the nodePoints value from an accepted report. The field is
	// optional on the wire; PointsKnown is false when it was absent.
	Points      float64
	PointsKnown bool
}

func (o LivenessOutcome) Accepted() bool {
	return o.Status == LivenessAccepted
}
