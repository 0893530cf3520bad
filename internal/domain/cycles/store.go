package cycles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateCycle(ctx context.Context, name, cycleType string, startDate, endDate time.Time, config CycleConfig, createdBy string) (string, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return "", err
	}
	var id string
	var creator any
	if createdBy != "" {
		creator = createdBy
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO feedback_cycles (name, cycle_type, start_date, end_date, status, config, created_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, name, cycleType, startDate, endDate, StatusActive, configJSON, creator).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (FeedbackCycle, error) {
	var c FeedbackCycle
	var configJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, cycle_type, start_date, end_date, status, config, COALESCE(created_by::text, ''), created_at
    FROM feedback_cycles
    WHERE id = $1
  `, cycleID).Scan(&c.ID, &c.Name, &c.Type, &c.StartDate, &c.EndDate, &c.Status, &configJSON, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeedbackCycle{}, ErrCycleNotFound
		}
		return FeedbackCycle{}, err
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &c.Config); err != nil {
			return FeedbackCycle{}, err
		}
	}
	return c, nil
}

func (s *Store) ListCyclesByStatus(ctx context.Context, status string) ([]FeedbackCycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, cycle_type, start_date, end_date, status, config, COALESCE(created_by::text, ''), created_at
    FROM feedback_cycles
    WHERE status = $1
    ORDER BY start_date DESC
  `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FeedbackCycle
	for rows.Next() {
		var c FeedbackCycle
		var configJSON []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.StartDate, &c.EndDate, &c.Status, &configJSON, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		if len(configJSON) > 0 {
			if err := json.Unmarshal(configJSON, &c.Config); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatusIf advances a cycle's status only when it still holds the
// expected current status, making concurrent pollers race-safe.
func (s *Store) UpdateStatusIf(ctx context.Context, cycleID, fromStatus, toStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE feedback_cycles SET status = $1 WHERE id = $2 AND status = $3
  `, toStatus, cycleID, fromStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) RequestCounts(ctx context.Context, cycleID string) (total, completed, pending, overdue int, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'completed'),
           COUNT(1) FILTER (WHERE status IN ('pending', 'in_progress')),
           COUNT(1) FILTER (WHERE status = 'overdue')
    FROM feedback_requests
    WHERE cycle_id = $1
  `, cycleID).Scan(&total, &completed, &pending, &overdue)
	return total, completed, pending, overdue, err
}
