package store

import (
	"context"
	"fmt"

	"github.com/smarthealth/internal/domain"
)

// ListReminders returns reminders in insertion order.
func (s *Store) ListReminders(ctx context.Context) ([]domain.HealthReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders(ctx)
}

func (s *Store) reminders(ctx context.Context) ([]domain.HealthReminder, error) {
	list := []domain.HealthReminder{}
	if _, err := s.read(ctx, SlotReminders, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddReminder assigns an id and appends the reminder.
func (s *Store) AddReminder(ctx context.Context, r domain.HealthReminder) (*domain.HealthReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.reminders(ctx)
	if err != nil {
		return nil, err
	}
	r.ID = s.nextID()
	list = append(list, r)
	if err := s.write(ctx, SlotReminders, list); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReminder merges patch into the reminder with the given id.
func (s *Store) UpdateReminder(ctx context.Context, id string, patch domain.ReminderPatch) (*domain.HealthReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.reminders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		patch.Apply(&list[i])
		if err := s.write(ctx, SlotReminders, list); err != nil {
			return nil, err
		}
		updated := list[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: reminder %s", domain.ErrNotFound, id)
}

// DeleteReminder removes the reminder and reports whether one was removed.
func (s *Store) DeleteReminder(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.reminders(ctx)
	if err != nil {
		return false, err
	}
	kept := list[:0:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := s.write(ctx, SlotReminders, kept); err != nil {
		return false, err
	}
	return len(kept) != len(list), nil
}
