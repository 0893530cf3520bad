package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/org"
	"peerpulse/internal/platform/metrics"
)

type Service struct {
	store     StoreAPI
	rankings  RankingSource
	employees EmployeeSource
	cycles    CycleSource
	notifier  Notifier
	metrics   *metrics.Collector
	now       func() time.Time
}

func NewService(store StoreAPI, rankings RankingSource, employees EmployeeSource, cycleSrc CycleSource, notifier Notifier, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		rankings:  rankings,
		employees: employees,
		cycles:    cycleSrc,
		notifier:  notifier,
		metrics:   collector,
		now:       time.Now,
	}
}

// AssignFeedbackRequests walks every employee and creates the cycle's
// feedback obligations from the current peer rankings. Rankings are read as
// persisted; callers wanting a fresh snapshot run RankAllPeers first. The
// whole procedure is re-runnable: every insert is gated by the
// (requester, provider, cycle) unique constraint, so a retry adds nothing.
// Only a missing cycle is fatal; one employee failing is recorded in the
// summary and the rest proceed.
func (s *Service) AssignFeedbackRequests(ctx context.Context, cycleID string, peersPerEmployee int, include360 bool) (Summary, error) {
	cycle, err := s.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return Summary{}, err
	}

	if peersPerEmployee <= 0 {
		peersPerEmployee = cycle.Config.PeersPerEmployee
	}
	if peersPerEmployee <= 0 {
		peersPerEmployee = DefaultPeersPerEmployee
	}
	include360 = include360 || cycle.Type == cycles.Type360 || cycle.Config.IncludeManager || cycle.Config.IncludeReports

	refs, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("listing employees: %w", err)
	}
	reportsIndex := buildReportsIndex(refs)
	recencyCutoff := s.now().UTC().AddDate(0, 0, -recencyExclusionDays)

	summary := Summary{CycleID: cycleID, Employees: len(refs), Include360: include360}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(assignConcurrency)
	for _, ref := range refs {
		employee := ref
		g.Go(func() error {
			created, skipped, err := s.assignOne(gCtx, employee, reportsIndex[employee.ID], cycle, peersPerEmployee, include360, recencyCutoff)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("assignment failed for employee", "employeeId", employee.ID, "cycleId", cycleID, "err", err)
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", employee.ID, err))
				return nil
			}
			summary.Created += len(created)
			summary.Skipped += skipped
			summary.Requests = append(summary.Requests, created...)
			return nil
		})
	}
	_ = g.Wait()

	if s.metrics != nil {
		s.metrics.RequestsAssigned(summary.Created)
		s.metrics.RequestsSkipped(summary.Skipped)
	}

	// Notifications go out only after every write has committed.
	if s.notifier != nil {
		for _, req := range summary.Requests {
			s.notifier.RequestAssigned(ctx, req)
		}
	}

	return summary, nil
}

func (s *Service) assignOne(ctx context.Context, employee org.EmployeeRef, directReports []string, cycle cycles.FeedbackCycle, peersPerEmployee int, include360 bool, recencyCutoff time.Time) ([]FeedbackRequest, int, error) {
	ranked, err := s.rankings.RankedPeers(ctx, employee.ID, peersPerEmployee+candidateBuffer)
	if err != nil {
		return nil, 0, fmt.Errorf("ranked peers: %w", err)
	}

	recent, err := s.store.RecentProviders(ctx, employee.ID, recencyCutoff)
	if err != nil {
		return nil, 0, fmt.Errorf("recent providers: %w", err)
	}

	planned := planRequests(planInput{
		Employee:         employee,
		DirectReports:    directReports,
		RankedPeers:      ranked,
		RecentProviders:  recent,
		PeersPerEmployee: peersPerEmployee,
		Include360:       include360,
		CycleID:          cycle.ID,
		DueDate:          cycle.EndDate,
	})

	var created []FeedbackRequest
	skipped := 0
	for _, req := range planned {
		id, inserted, err := s.store.CreateRequest(ctx, req)
		if err != nil {
			return created, skipped, fmt.Errorf("creating request %s -> %s: %w", req.RequesterID, req.ProviderID, err)
		}
		if !inserted {
			skipped++
			continue
		}
		req.ID = id
		req.AssignedAt = s.now().UTC()
		created = append(created, req)
	}
	return created, skipped, nil
}

func (s *Service) GetPendingRequestsFor(ctx context.Context, providerID string) ([]FeedbackRequest, error) {
	return s.store.PendingFor(ctx, providerID)
}

func (s *Service) GetRequestsFrom(ctx context.Context, requesterID, cycleID string) ([]FeedbackRequest, error) {
	return s.store.RequestsFrom(ctx, requesterID, cycleID)
}

func (s *Service) UpdateRequestStatus(ctx context.Context, requestID, status string) error {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
	default:
		return ErrInvalidStatus
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if !statusTransitionAllowed(req.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, req.Status, status)
	}
	updated, err := s.store.UpdateStatusIf(ctx, requestID, req.Status, status)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: request changed concurrently", ErrStatusTransition)
	}
	return nil
}

// RecordResponse stores a provider's submitted feedback and completes the
// request. The response row is what drives the 30-day recency exclusion on
// later assignment runs.
func (s *Service) RecordResponse(ctx context.Context, requestID, providerID, content string, rating *int) (string, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	if req.ProviderID != providerID {
		return "", ErrNotRequestOwner
	}
	if req.Status == StatusCompleted {
		return "", ErrAlreadyResponded
	}

	id, err := s.store.CreateResponse(ctx, FeedbackResponse{
		RequestID:   requestID,
		ProviderID:  providerID,
		RequesterID: req.RequesterID,
		Content:     content,
		Rating:      rating,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.ResponseStored()
	}
	return id, nil
}

// EscalateOverdue is run by the scheduler: it marks late requests overdue
// and notifies their providers.
func (s *Service) EscalateOverdue(ctx context.Context) (int, error) {
	overdue, err := s.store.MarkOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if s.notifier != nil {
		for _, req := range overdue {
			s.notifier.RequestOverdue(ctx, req)
		}
	}
	return len(overdue), nil
}
