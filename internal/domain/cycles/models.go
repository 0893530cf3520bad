package cycles

import "time"

type CycleConfig struct {
	PeersPerEmployee int  `json:"peersPerEmployee"`
	IncludeManager   bool `json:"includeManager"`
	IncludeReports   bool `json:"includeReports"`
	AutoAssign       bool `json:"autoAssign"`
}

type FeedbackCycle struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	Status    string      `json:"status"`
	Config    CycleConfig `json:"config"`
	CreatedBy string      `json:"createdBy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CycleStats aggregates request progress for one cycle. CompletionRate is
// nil when the cycle has no requests at all.
type CycleStats struct {
	CycleID        string   `json:"cycleId"`
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	Pending        int      `json:"pending"`
	Overdue        int      `json:"overdue"`
	CompletionRate *float64 `json:"completionRate"`
}
