package store

import (
	"context"
	"fmt"

	"github.com/smarthealth/internal/domain"
)

// DefaultProfile is the profile used when none is stored.
func DefaultProfile() domain.UserProfile {
	return domain.UserProfile{
		ID:             "1",
		Name:           "Sarah Johnson",
		Email:          "sarah.johnson@example.com",
		Age:            28,
		Gender:         "female",
		MedicalHistory: []string{"Seasonal allergies", "Mild asthma"},
		Allergies:      []string{"Pollen", "Dust"},
		Medications:    []string{"Albuterol inhaler"},
		EmergencyContact: &domain.EmergencyContact{
			Name:         "Dr. Michael Chen",
			Phone:        "+1-555-0123",
			Relationship: "Primary Care Physician",
		},
	}
}

// GetProfile returns the stored profile or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile(ctx)
}

func (s *Store) profile(ctx context.Context) (*domain.UserProfile, error) {
	var p domain.UserProfile
	ok, err := s.read(ctx, SlotProfile, &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: profile", domain.ErrNotFound)
	}
	return &p, nil
}

// SaveProfile replaces the stored profile.
func (s *Store) SaveProfile(ctx context.Context, p domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, SlotProfile, p)
}

// UpdateProfile merges patch into the stored profile.
func (s *Store) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	if err := s.write(ctx, SlotProfile, p); err != nil {
		return nil, err
	}
	return p, nil
}
