package cycles

import (
	"context"
	"fmt"
	"time"

	"peerpulse/internal/platform/metrics"
)

type StoreAPI interface {
	CreateCycle(ctx context.Context, name, cycleType string, startDate, endDate time.Time, config CycleConfig, createdBy string) (string, error)
	GetCycle(ctx context.Context, cycleID string) (FeedbackCycle, error)
	ListCyclesByStatus(ctx context.Context, status string) ([]FeedbackCycle, error)
	UpdateStatusIf(ctx context.Context, cycleID, fromStatus, toStatus string) (bool, error)
	RequestCounts(ctx context.Context, cycleID string) (total, completed, pending, overdue int, err error)
}

type Service struct {
	store   StoreAPI
	metrics *metrics.Collector
	now     func() time.Time
}

func NewService(store StoreAPI, collector *metrics.Collector) *Service {
	return &Service{store: store, metrics: collector, now: time.Now}
}

func (s *Service) CreateCycle(ctx context.Context, name, cycleType string, startDate, endDate time.Time, config CycleConfig, createdBy string) (string, error) {
	if !isKnownType(cycleType) {
		return "", ErrInvalidCycleType
	}
	if config.PeersPerEmployee <= 0 {
		config.PeersPerEmployee = 2
	}
	return s.store.CreateCycle(ctx, name, cycleType, startDate, endDate, config, createdBy)
}

func (s *Service) GetCycle(ctx context.Context, cycleID string) (FeedbackCycle, error) {
	return s.store.GetCycle(ctx, cycleID)
}

func (s *Service) ActiveCycles(ctx context.Context) ([]FeedbackCycle, error) {
	return s.store.ListCyclesByStatus(ctx, StatusActive)
}

func (s *Service) CyclesByStatus(ctx context.Context, status string) ([]FeedbackCycle, error) {
	return s.store.ListCyclesByStatus(ctx, status)
}

func (s *Service) CycleStats(ctx context.Context, cycleID string) (CycleStats, error) {
	if _, err := s.store.GetCycle(ctx, cycleID); err != nil {
		return CycleStats{}, err
	}
	total, completed, pending, overdue, err := s.store.RequestCounts(ctx, cycleID)
	if err != nil {
		return CycleStats{}, fmt.Errorf("counting requests for cycle %s: %w", cycleID, err)
	}
	return BuildStats(cycleID, total, completed, pending, overdue), nil
}

// DueForCompletion evaluates the closure predicate for one cycle.
func (s *Service) DueForCompletion(ctx context.Context, cycle FeedbackCycle) (bool, error) {
	if cycle.Status != StatusActive {
		return false, nil
	}
	stats, err := s.CycleStats(ctx, cycle.ID)
	if err != nil {
		return false, err
	}
	return ShouldComplete(stats, cycle.EndDate, s.now().UTC()), nil
}

func (s *Service) CompleteCycle(ctx context.Context, cycleID string) error {
	return s.transition(ctx, cycleID, StatusCompleted)
}

// ArchiveCycle is an explicit administrative action, never automatic.
func (s *Service) ArchiveCycle(ctx context.Context, cycleID string) error {
	return s.transition(ctx, cycleID, StatusArchived)
}

func (s *Service) transition(ctx context.Context, cycleID, toStatus string) error {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if !CanTransition(cycle.Status, toStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cycle.Status, toStatus)
	}
	updated, err := s.store.UpdateStatusIf(ctx, cycleID, cycle.Status, toStatus)
	if err != nil {
		return err
	}
	if !updated {
		// Lost the race to another transition; re-read to report precisely.
		current, err := s.store.GetCycle(ctx, cycleID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, toStatus)
	}
	if toStatus == StatusCompleted && s.metrics != nil {
		s.metrics.CycleCompleted()
	}
	return nil
}

func isKnownType(cycleType string) bool {
	for _, t := range KnownTypes {
		if t == cycleType {
			return true
		}
	}
	return false
}
