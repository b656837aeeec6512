package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/smarthealth/internal/domain"
)

// Trend window bounds.
const (
	DefaultTrendDays = 7
	MaxTrendDays     = 365
	RecentAnalyses   = 10
)

// Stats derives aggregates from the analysis history as of now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*domain.HealthStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.analyses(ctx)
	if err != nil {
		return nil, err
	}
	stats := computeStats(list, now)
	return &stats, nil
}

// Trends returns one aggregate per day for the last days days, oldest first.
func (s *Store) Trends(ctx context.Context, now time.Time, days int) ([]domain.HealthTrend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.analyses(ctx)
	if err != nil {
		return nil, err
	}
	return computeTrends(list, now, days), nil
}

// Dashboard bundles profile, stats, recent history, insights, reminders and
// a seven-day trend. A missing profile is replaced by DefaultProfile.
func (s *Store) Dashboard(ctx context.Context, now time.Time) (*domain.DashboardData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := DefaultProfile()
	p, err := s.profile(ctx)
	switch {
	case err == nil:
		user = *p
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	list, err := s.analyses(ctx)
	if err != nil {
		return nil, err
	}
	insights, err := s.insights(ctx)
	if err != nil {
		return nil, err
	}
	reminders, err := s.reminders(ctx)
	if err != nil {
		return nil, err
	}

	recent := list
	if len(recent) > RecentAnalyses {
		recent = recent[:RecentAnalyses]
	}

	return &domain.DashboardData{
		User:           user,
		Stats:          computeStats(list, now),
		RecentAnalyses: recent,
		Insights:       insights,
		Reminders:      reminders,
		Trends:         computeTrends(list, now, DefaultTrendDays),
	}, nil
}

func computeStats(list []domain.HealthAnalysisRecord, now time.Time) domain.HealthStats {
	weekAgo := now.AddDate(0, 0, -7).Format(domain.DateLayout)
	monthAgo := now.AddDate(0, 0, -30).Format(domain.DateLayout)

	stats := domain.HealthStats{TotalAnalyses: len(list)}
	for _, rec := range list {
		if rec.Date >= weekAgo {
			stats.ThisWeek++
		}
		if rec.Date >= monthAgo {
			stats.ThisMonth++
		}
	}
	stats.AverageConfidence = meanConfidence(list)
	stats.Accuracy = stats.AverageConfidence
	stats.Streak = streak(list, now)
	return stats
}

// streak counts consecutive calendar days with at least one record, walking
// back from the most recent record dated no later than today.
func streak(list []domain.HealthAnalysisRecord, now time.Time) int {
	today := now.Format(domain.DateLayout)
	days := make(map[string]bool, len(list))
	latest := ""
	for _, rec := range list {
		if _, err := time.Parse(domain.DateLayout, rec.Date); err != nil || rec.Date > today {
			continue
		}
		days[rec.Date] = true
		if rec.Date > latest {
			latest = rec.Date
		}
	}
	if latest == "" {
		return 0
	}

	day, _ := time.Parse(domain.DateLayout, latest)
	n := 0
	for days[day.Format(domain.DateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func computeTrends(list []domain.HealthAnalysisRecord, now time.Time, days int) []domain.HealthTrend {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	byDate := make(map[string][]domain.HealthAnalysisRecord)
	for _, rec := range list {
		byDate[rec.Date] = append(byDate[rec.Date], rec)
	}

	trends := make([]domain.HealthTrend, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(domain.DateLayout)
		recs := byDate[date]
		avg := meanConfidence(recs)
		trends = append(trends, domain.HealthTrend{
			Date:       date,
			Analyses:   len(recs),
			Accuracy:   avg,
			Confidence: avg,
		})
	}
	return trends
}

func meanConfidence(list []domain.HealthAnalysisRecord) int {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, rec := range list {
		sum += rec.Confidence
	}
	return int(math.Floor(float64(sum)/float64(len(list)) + 0.5))
}
