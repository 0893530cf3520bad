package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"peerpulse/internal/platform/metrics"
)

const recomputeConcurrency = 8

type Service struct {
	store        StoreAPI
	interactions InteractionSource
	employees    EmployeeSource
	metrics      *metrics.Collector
	now          func() time.Time
}

func NewService(store StoreAPI, interactionSrc InteractionSource, employees EmployeeSource, collector *metrics.Collector) *Service {
	return &Service{
		store:        store,
		interactions: interactionSrc,
		employees:    employees,
		metrics:      collector,
		now:          time.Now,
	}
}

// RankPeers recomputes and persists the ranking set for one employee. An
// employee with no ledger rows gets an empty set, which clears any stale
// rankings left from earlier data.
func (s *Service) RankPeers(ctx context.Context, employeeID string) ([]PeerRanking, error) {
	rows, err := s.interactions.InteractionsFor(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("loading interactions for %s: %w", employeeID, err)
	}

	rankings := BuildRankings(employeeID, rows, s.now().UTC())
	if err := s.store.ReplaceRankings(ctx, employeeID, rankings); err != nil {
		return nil, fmt.Errorf("replacing rankings for %s: %w", employeeID, err)
	}
	if s.metrics != nil {
		s.metrics.RankingComputed()
	}
	return rankings, nil
}

// RankAllPeers recomputes every employee's rankings. Employees are
// independent, so the work fans out with bounded concurrency; one employee
// failing does not stop the rest.
func (s *Service) RankAllPeers(ctx context.Context) (BatchSummary, error) {
	refs, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("listing employees: %w", err)
	}

	summary := BatchSummary{Employees: len(refs)}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)
	for _, ref := range refs {
		employeeID := ref.ID
		g.Go(func() error {
			if _, err := s.RankPeers(gCtx, employeeID); err != nil {
				slog.Warn("peer ranking recompute failed", "employeeId", employeeID, "err", err)
				mu.Lock()
				summary.Failed++
				summary.Errors = append(summary.Errors, err.Error())
				mu.Unlock()
				return nil
			}
			mu.Lock()
			summary.Ranked++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return summary, nil
}

// RankedPeers reads the persisted top-N without recomputing. Callers that
// need freshness invoke RankPeers first.
func (s *Service) RankedPeers(ctx context.Context, employeeID string, limit int) ([]PeerRanking, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.RankedPeers(ctx, employeeID, limit)
}
