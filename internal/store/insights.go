package store

import (
	"context"

	"github.com/smarthealth/internal/domain"
)

// ListInsights returns insights, newest first.
func (s *Store) ListInsights(ctx context.Context) ([]domain.HealthInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insights(ctx)
}

func (s *Store) insights(ctx context.Context) ([]domain.HealthInsight, error) {
	list := []domain.HealthInsight{}
	if _, err := s.read(ctx, SlotInsights, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddInsight assigns an id and prepends the insight.
func (s *Store) AddInsight(ctx context.Context, in domain.HealthInsight) (*domain.HealthInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.insights(ctx)
	if err != nil {
		return nil, err
	}
	in.ID = s.nextID()
	list = append([]domain.HealthInsight{in}, list...)
	if err := s.write(ctx, SlotInsights, list); err != nil {
		return nil, err
	}
	return &in, nil
}
