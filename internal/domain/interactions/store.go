package interactions

import (
	"context"
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

const upsertInteractionSQL = `
    INSERT INTO interactions (employee_id, peer_id, interaction_type, interaction_count, total_minutes, last_interaction_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (employee_id, peer_id, interaction_type) DO UPDATE
    SET interaction_count = interactions.interaction_count + EXCLUDED.interaction_count,
        total_minutes = interactions.total_minutes + EXCLUDED.total_minutes,
        last_interaction_at = GREATEST(interactions.last_interaction_at, EXCLUDED.last_interaction_at)
`

// RecordInteraction accumulates one interaction in both directions inside a
// single transaction, so the ledger stays symmetric even under failures.
func (s *Store) RecordInteraction(ctx context.Context, employeeID, peerID, interactionType string, count, minutes int, occurredAt time.Time) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, upsertInteractionSQL, employeeID, peerID, interactionType, count, minutes, occurredAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, upsertInteractionSQL, peerID, employeeID, interactionType, count, minutes, occurredAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) InteractionsFor(ctx context.Context, employeeID string) ([]Interaction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, peer_id, interaction_type, interaction_count, total_minutes, last_interaction_at
    FROM interactions
    WHERE employee_id = $1
    ORDER BY peer_id, interaction_type
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var i Interaction
		if err := rows.Scan(&i.EmployeeID, &i.PeerID, &i.Type, &i.Count, &i.TotalMinutes, &i.LastInteractionAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
