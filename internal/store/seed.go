package store

import (
	"context"
	"errors"

	"github.com/smarthealth/internal/domain"
)

// Seed stores the default profile when none exists and, when the history is
// empty, the sample analyses, reminders and insights. It reports whether
// sample data was written. Running it again changes nothing.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.profile(ctx); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		if err := s.write(ctx, SlotProfile, DefaultProfile()); err != nil {
			return false, err
		}
	}

	list, err := s.analyses(ctx)
	if err != nil {
		return false, err
	}
	if len(list) > 0 {
		return false, nil
	}

	s.saveAnalyses(ctx, sampleAnalyses())
	if err := s.write(ctx, SlotReminders, sampleReminders()); err != nil {
		return false, err
	}
	if err := s.write(ctx, SlotInsights, sampleInsights()); err != nil {
		return false, err
	}

	s.logger.Info("seeded sample health data")
	return true, nil
}

func sampleAnalyses() []domain.HealthAnalysisRecord {
	return []domain.HealthAnalysisRecord{
		{
			ID:              "1",
			Type:            domain.AnalysisSymptom,
			Date:            "2024-01-15",
			Result:          "Common Cold",
			Confidence:      89,
			Symptoms:        []string{"Runny nose", "Sore throat", "Cough"},
			Description:     "Mild upper respiratory infection",
			Recommendations: []string{"Rest well", "Stay hydrated", "Take over-the-counter cold medicine"},
			Severity:        domain.RecordSeverityLow,
		},
		{
			ID:              "2",
			Type:            domain.AnalysisImage,
			Date:            "2024-01-14",
			Result:          "Eczema",
			Confidence:      92,
			ImageURL:        "/sample-skin.jpg",
			Description:     "Mild eczema on forearm",
			Recommendations: []string{"Use moisturizer", "Avoid harsh soaps", "Consider prescription cream"},
			Severity:        domain.RecordSeverityMedium,
		},
		{
			ID:              "3",
			Type:            domain.AnalysisSymptom,
			Date:            "2024-01-12",
			Result:          "Seasonal Allergies",
			Confidence:      87,
			Symptoms:        []string{"Sneezing", "Itchy eyes", "Nasal congestion"},
			Description:     "Pollen allergy symptoms",
			Recommendations: []string{"Take antihistamines", "Use air purifier", "Avoid outdoor activities during high pollen"},
			Severity:        domain.RecordSeverityLow,
		},
		{
			ID:              "4",
			Type:            domain.AnalysisImage,
			Date:            "2024-01-10",
			Result:          "Normal Skin",
			Confidence:      95,
			ImageURL:        "/sample-skin-normal.jpg",
			Description:     "Healthy skin appearance",
			Recommendations: []string{"Continue current skincare routine", "Use sunscreen daily"},
			Severity:        domain.RecordSeverityLow,
		},
	}
}

func sampleReminders() []domain.HealthReminder {
	return []domain.HealthReminder{
		{
			ID:          "1",
			Title:       "Annual Checkup",
			Date:        "2024-02-15",
			Time:        "10:00 AM",
			Type:        domain.ReminderAppointment,
			Description: "Routine physical examination",
			Priority:    domain.PriorityHigh,
		},
		{
			ID:          "2",
			Title:       "Albuterol Refill",
			Date:        "2024-01-20",
			Time:        "9:00 AM",
			Type:        domain.ReminderMedication,
			Description: "Inhaler prescription renewal",
			Priority:    domain.PriorityMedium,
		},
		{
			ID:          "3",
			Title:       "Blood Pressure Check",
			Date:        "2024-01-18",
			Time:        "2:00 PM",
			Type:        domain.ReminderHealthCheck,
			Description: "Monthly blood pressure monitoring",
			Priority:    domain.PriorityMedium,
		},
	}
}

func sampleInsights() []domain.HealthInsight {
	return []domain.HealthInsight{
		{
			ID:          "1",
			Type:        domain.InsightPositive,
			Title:       "Health Streak",
			Description: "You've been consistent with health monitoring for 12 days!",
			Date:        "2024-01-15",
		},
		{
			ID:          "2",
			Type:        domain.InsightInfo,
			Title:       "Seasonal Pattern",
			Description: "Your allergy symptoms typically peak in spring months.",
			Date:        "2024-01-14",
			Actionable:  true,
			ActionURL:   "/app",
		},
		{
			ID:          "3",
			Type:        domain.InsightWarning,
			Title:       "Sleep Quality",
			Description: "Consider improving sleep hygiene for better health outcomes.",
			Date:        "2024-01-13",
			Actionable:  true,
			ActionURL:   "/dashboard?tab=insights",
		},
	}
}
