package assignment

import (
	"context"
	"time"

	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/org"
	"peerpulse/internal/domain/ranking"
)

type StoreAPI interface {
	// CreateRequest inserts one request gated by the unique
	// (requester, provider, cycle) constraint. created is false when the
	// tuple already existed.
	CreateRequest(ctx context.Context, req FeedbackRequest) (id string, created bool, err error)
	GetRequest(ctx context.Context, requestID string) (FeedbackRequest, error)
	RecentProviders(ctx context.Context, requesterID string, since time.Time) (map[string]struct{}, error)
	PendingFor(ctx context.Context, providerID string) ([]FeedbackRequest, error)
	RequestsFrom(ctx context.Context, requesterID, cycleID string) ([]FeedbackRequest, error)
	UpdateStatusIf(ctx context.Context, requestID, fromStatus, toStatus string) (bool, error)
	MarkOverdue(ctx context.Context, asOf time.Time) ([]FeedbackRequest, error)
	CreateResponse(ctx context.Context, resp FeedbackResponse) (string, error)
}

type RankingSource interface {
	RankedPeers(ctx context.Context, employeeID string, limit int) ([]ranking.PeerRanking, error)
}

type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]org.EmployeeRef, error)
}

type CycleSource interface {
	GetCycle(ctx context.Context, cycleID string) (cycles.FeedbackCycle, error)
}

// Notifier is invoked after engine writes commit; implementations must not
// block assignment correctness.
type Notifier interface {
	RequestAssigned(ctx context.Context, req FeedbackRequest)
	RequestOverdue(ctx context.Context, req FeedbackRequest)
}
