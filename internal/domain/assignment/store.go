package assignment

import (
	"context"
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

const requestColumns = `
    id, requester_id, provider_id, cycle_id, request_type, status,
    assigned_at, due_date, completed_at, reminder_count
`

func scanRequest(row pgx.Row) (FeedbackRequest, error) {
	var r FeedbackRequest
	err := row.Scan(&r.ID, &r.RequesterID, &r.ProviderID, &r.CycleID, &r.RequestType, &r.Status, &r.AssignedAt, &r.DueDate, &r.CompletedAt, &r.ReminderCount)
	return r, err
}

// CreateRequest relies on the unique (requester_id, provider_id, cycle_id)
// index as the correctness backstop: a concurrent duplicate insert conflicts
// and reports created=false instead of failing.
func (s *Store) CreateRequest(ctx context.Context, req FeedbackRequest) (string, bool, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO feedback_requests (requester_id, provider_id, cycle_id, request_type, status, due_date)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (requester_id, provider_id, cycle_id) DO NOTHING
    RETURNING id
  `, req.RequesterID, req.ProviderID, req.CycleID, req.RequestType, req.Status, req.DueDate).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (FeedbackRequest, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM feedback_requests
    WHERE id = $1
  `, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeedbackRequest{}, ErrRequestNotFound
		}
		return FeedbackRequest{}, err
	}
	return req, nil
}

// RecentProviders returns the set of employees who submitted a response to
// this requester since the cutoff, regardless of which cycle it was in.
func (s *Store) RecentProviders(ctx context.Context, requesterID string, since time.Time) (map[string]struct{}, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT provider_id
    FROM feedback_responses
    WHERE requester_id = $1 AND submitted_at >= $2
  `, requesterID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		providers[id] = struct{}{}
	}
	return providers, rows.Err()
}

func (s *Store) PendingFor(ctx context.Context, providerID string) ([]FeedbackRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM feedback_requests
    WHERE provider_id = $1 AND status IN ('pending', 'in_progress', 'overdue')
    ORDER BY due_date, assigned_at
  `, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) RequestsFrom(ctx context.Context, requesterID, cycleID string) ([]FeedbackRequest, error) {
	query := `
    SELECT ` + requestColumns + `
    FROM feedback_requests
    WHERE requester_id = $1
  `
	args := []any{requesterID}
	if cycleID != "" {
		query += " AND cycle_id = $2"
		args = append(args, cycleID)
	}
	query += " ORDER BY assigned_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) UpdateStatusIf(ctx context.Context, requestID, fromStatus, toStatus string) (bool, error) {
	query := `
    UPDATE feedback_requests
    SET status = $1
    WHERE id = $2 AND status = $3
  `
	if toStatus == StatusCompleted {
		query = `
    UPDATE feedback_requests
    SET status = $1, completed_at = now()
    WHERE id = $2 AND status = $3
  `
	}
	result, err := s.DB.Exec(ctx, query, toStatus, requestID, fromStatus)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// MarkOverdue flips pending and in-progress requests past their due date to
// overdue, bumps reminder_count, and returns the affected rows so callers
// can notify providers.
func (s *Store) MarkOverdue(ctx context.Context, asOf time.Time) ([]FeedbackRequest, error) {
	rows, err := s.DB.Query(ctx, `
    UPDATE feedback_requests
    SET status = 'overdue', reminder_count = reminder_count + 1
    WHERE status IN ('pending', 'in_progress') AND due_date < $1
    RETURNING `+requestColumns+`
  `, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// CreateResponse stores a response and completes its request in one
// transaction.
func (s *Store) CreateResponse(ctx context.Context, resp FeedbackResponse) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO feedback_responses (request_id, provider_id, requester_id, content, rating, submitted_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, resp.RequestID, resp.ProviderID, resp.RequesterID, resp.Content, resp.Rating, resp.SubmittedAt).Scan(&id); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE feedback_requests
    SET status = 'completed', completed_at = $1
    WHERE id = $2
  `, resp.SubmittedAt, resp.RequestID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func collectRequests(rows pgx.Rows) ([]FeedbackRequest, error) {
	var out []FeedbackRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
