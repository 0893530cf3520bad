package ranking

import "time"

// PeerRanking is one row of an employee's materialized ranking set. The set
// is derived data: recomputing an employee replaces all of that employee's
// rows in one transaction.
type PeerRanking struct {
	EmployeeID   string    `json:"employeeId"`
	PeerID       string    `json:"peerId"`
	Score        float64   `json:"collaborationScore"`
	RankPosition int       `json:"rankPosition"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// BatchSummary reports the outcome of a full recompute across employees.
type BatchSummary struct {
	Employees int      `json:"employees"`
	Ranked    int      `json:"ranked"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
