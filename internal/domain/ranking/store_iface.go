package ranking

import (
	"context"

	"peerpulse/internal/domain/interactions"
	"peerpulse/internal/domain/org"
)

type StoreAPI interface {
	ReplaceRankings(ctx context.Context, employeeID string, rankings []PeerRanking) error
	RankedPeers(ctx context.Context, employeeID string, limit int) ([]PeerRanking, error)
}

type InteractionSource interface {
	InteractionsFor(ctx context.Context, employeeID string) ([]interactions.Interaction, error)
}

type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]org.EmployeeRef, error)
}
