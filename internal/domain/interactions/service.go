package interactions

import (
	"context"
	"time"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Record validates and accumulates one interaction. occurredAt defaults to
// now when zero.
func (s *Service) Record(ctx context.Context, employeeID, peerID, interactionType string, count, minutes int, occurredAt time.Time) error {
	if employeeID == peerID {
		return ErrSelfInteraction
	}
	if count <= 0 || minutes < 0 {
		return ErrInvalidCount
	}
	if !isKnownType(interactionType) {
		return ErrUnknownType
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return s.store.RecordInteraction(ctx, employeeID, peerID, interactionType, count, minutes, occurredAt)
}

func (s *Service) CollaborationsOf(ctx context.Context, employeeID string) ([]Interaction, error) {
	return s.store.InteractionsFor(ctx, employeeID)
}

// InteractionsFor satisfies ranking.InteractionSource.
func (s *Service) InteractionsFor(ctx context.Context, employeeID string) ([]Interaction, error) {
	return s.store.InteractionsFor(ctx, employeeID)
}

func isKnownType(interactionType string) bool {
	for _, t := range KnownTypes {
		if t == interactionType {
			return true
		}
	}
	return false
}
