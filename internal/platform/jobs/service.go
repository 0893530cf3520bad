package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"peerpulse/internal/domain/assignment"
	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/ranking"
	"peerpulse/internal/platform/config"
)

const (
	JobRankingRefresh    = "ranking_refresh"
	JobCycleClosure      = "cycle_closure"
	JobOverdueEscalation = "overdue_escalation"
)

type Service struct {
	DB         *pgxpool.Pool
	Cfg        config.Config
	Ranking    *ranking.Service
	Cycles     *cycles.Service
	Assignment *assignment.Service
	queue      chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, rankingSvc *ranking.Service, cycleSvc *cycles.Service, assignSvc *assignment.Service) *Service {
	return &Service{
		DB:         db,
		Cfg:        cfg,
		Ranking:    rankingSvc,
		Cycles:     cycleSvc,
		Assignment: assignSvc,
		queue:      make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.RankingRefreshInterval > 0 {
		go s.schedule(ctx, s.Cfg.RankingRefreshInterval, JobRankingRefresh, s.runRankingRefresh)
	}
	if s.Cfg.CycleCloseInterval > 0 {
		go s.schedule(ctx, s.Cfg.CycleCloseInterval, JobCycleClosure, s.runCycleClosure)
	}
	if s.Cfg.ReminderInterval > 0 {
		go s.schedule(ctx, s.Cfg.ReminderInterval, JobOverdueEscalation, s.runOverdueEscalation)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) runRankingRefresh(ctx context.Context) (any, error) {
	summary, err := s.Ranking.RankAllPeers(ctx)
	return summary, err
}

// runCycleClosure polls active cycles against the completion predicate and
// advances the ones that are due.
func (s *Service) runCycleClosure(ctx context.Context) (any, error) {
	active, err := s.Cycles.ActiveCycles(ctx)
	if err != nil {
		return nil, err
	}
	closed := 0
	for _, cycle := range active {
		due, err := s.Cycles.DueForCompletion(ctx, cycle)
		if err != nil {
			slog.Warn("cycle closure check failed", "cycleId", cycle.ID, "err", err)
			continue
		}
		if !due {
			continue
		}
		if err := s.Cycles.CompleteCycle(ctx, cycle.ID); err != nil {
			slog.Warn("cycle completion failed", "cycleId", cycle.ID, "err", err)
			continue
		}
		closed++
	}
	return map[string]any{"activeCycles": len(active), "closed": closed}, nil
}

func (s *Service) runOverdueEscalation(ctx context.Context) (any, error) {
	escalated, err := s.Assignment.EscalateOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"escalated": escalated}, nil
}
