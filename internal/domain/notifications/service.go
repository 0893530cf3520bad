package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"peerpulse/internal/domain/assignment"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Create writes an in-app notification and, when a mailer is configured,
// sends a best-effort email. Email failures are logged, never returned.
func (s *Service) Create(ctx context.Context, employeeID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, employeeID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.EmployeeEmail(ctx, employeeID)
	if err != nil || email == "" {
		if err != nil {
			slog.Warn("notification email lookup failed", "employeeId", employeeID, "err", err)
		}
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "employeeId", employeeID, "err", err)
	}
	return nil
}

func (s *Service) ListFor(ctx context.Context, employeeID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListFor(ctx, employeeID, limit)
}

// RequestAssigned and RequestOverdue satisfy the assignment engine's
// Notifier contract. Both are fire-and-forget: the engine's writes have
// already committed by the time these run.
func (s *Service) RequestAssigned(ctx context.Context, req assignment.FeedbackRequest) {
	title := "New feedback request"
	body := fmt.Sprintf("You have been asked to give %s feedback, due %s.", req.RequestType, req.DueDate.Format("2006-01-02"))
	if err := s.Create(ctx, req.ProviderID, "feedback_assigned", title, body); err != nil {
		slog.Warn("assignment notification failed", "requestId", req.ID, "err", err)
	}
}

func (s *Service) RequestOverdue(ctx context.Context, req assignment.FeedbackRequest) {
	title := "Feedback request overdue"
	body := fmt.Sprintf("A %s feedback request assigned to you was due %s.", req.RequestType, req.DueDate.Format("2006-01-02"))
	if err := s.Create(ctx, req.ProviderID, "feedback_overdue", title, body); err != nil {
		slog.Warn("overdue notification failed", "requestId", req.ID, "err", err)
	}
}
