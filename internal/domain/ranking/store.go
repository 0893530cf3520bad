package ranking

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ReplaceRankings swaps an employee's entire ranking set in one transaction.
// Concurrent readers see either the old set or the new one, never a mix.
func (s *Store) ReplaceRankings(ctx context.Context, employeeID string, rankings []PeerRanking) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM peer_rankings WHERE employee_id = $1", employeeID); err != nil {
		return err
	}

	for _, r := range rankings {
		if _, err := tx.Exec(ctx, `
      INSERT INTO peer_rankings (employee_id, peer_id, collaboration_score, rank_position, calculated_at)
      VALUES ($1, $2, $3, $4, $5)
    `, r.EmployeeID, r.PeerID, r.Score, r.RankPosition, r.CalculatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) RankedPeers(ctx context.Context, employeeID string, limit int) ([]PeerRanking, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, peer_id, collaboration_score, rank_position, calculated_at
    FROM peer_rankings
    WHERE employee_id = $1
    ORDER BY rank_position
    LIMIT $2
  `, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rankings []PeerRanking
	for rows.Next() {
		var r PeerRanking
		if err := rows.Scan(&r.EmployeeID, &r.PeerID, &r.Score, &r.RankPosition, &r.CalculatedAt); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}
