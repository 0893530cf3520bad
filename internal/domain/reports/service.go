package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"

	"peerpulse/internal/domain/cycles"
)

type Service struct {
	DB     *pgxpool.Pool
	Cycles *cycles.Service
}

func NewService(db *pgxpool.Pool, cycleSvc *cycles.Service) *Service {
	return &Service{DB: db, Cycles: cycleSvc}
}

type providerLoad struct {
	Name      string
	Requests  int
	Completed int
}

// CycleSummaryPDF renders a one-page summary of a cycle: its dates, request
// statistics, and the most-loaded providers.
func (s *Service) CycleSummaryPDF(ctx context.Context, cycleID string) ([]byte, error) {
	cycle, err := s.Cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Cycles.CycleStats(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	loads, err := s.topProviders(ctx, cycleID, 10)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Feedback Cycle Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s (%s)", cycle.Name, cycle.Type))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", cycle.StartDate.Format("2006-01-02"), cycle.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", cycle.Status))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Requests: %d total, %d completed, %d pending, %d overdue", stats.Total, stats.Completed, stats.Pending, stats.Overdue))
	pdf.Ln(7)
	if stats.CompletionRate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Completion rate: %.2f%%", *stats.CompletionRate))
	} else {
		pdf.Cell(0, 8, "Completion rate: n/a (no requests)")
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Provider load")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	if len(loads) == 0 {
		pdf.Cell(0, 7, "No requests assigned yet.")
	}
	for _, load := range loads {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d assigned, %d completed", load.Name, load.Requests, load.Completed))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) topProviders(ctx context.Context, cycleID string, limit int) ([]providerLoad, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.name, COUNT(1),
           COUNT(1) FILTER (WHERE r.status = 'completed')
    FROM feedback_requests r
    JOIN employees e ON r.provider_id = e.id
    WHERE r.cycle_id = $1
    GROUP BY e.name
    ORDER BY COUNT(1) DESC, e.name
    LIMIT $2
  `, cycleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []providerLoad
	for rows.Next() {
		var load providerLoad
		if err := rows.Scan(&load.Name, &load.Requests, &load.Completed); err != nil {
			return nil, err
		}
		out = append(out, load)
	}
	return out, rows.Err()
}
