package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/smarthealth/internal/domain"
	"go.uber.org/zap"
)

// History limits.
const (
	MaxAnalyses        = 50
	MaxMinimalAnalyses = 10
	MaxDescriptionLen  = 500
)

// Degradation stages reported to metrics.
const (
	stageMinimal = "minimal"
	stageDropped = "dropped"
)

// ListAnalyses returns the analysis history, newest first.
func (s *Store) ListAnalyses(ctx context.Context) ([]domain.HealthAnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyses(ctx)
}

func (s *Store) analyses(ctx context.Context) ([]domain.HealthAnalysisRecord, error) {
	list := []domain.HealthAnalysisRecord{}
	if _, err := s.read(ctx, SlotAnalyses, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetAnalysis returns one record by id.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*domain.HealthAnalysisRecord, error) {
	list, err := s.ListAnalyses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: analysis %s", domain.ErrNotFound, id)
}

// AddAnalysis assigns an id and prepends the record to the history. Storage
// failures only degrade what is persisted; the new record is always returned.
func (s *Store) AddAnalysis(ctx context.Context, rec domain.HealthAnalysisRecord) domain.HealthAnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID()

	list, err := s.analyses(ctx)
	if err != nil {
		s.logger.Error("failed to add analysis", zap.String("id", rec.ID), zap.Error(err))
		return rec
	}

	stored := rec
	stored.ImageURL = ""
	list = append([]domain.HealthAnalysisRecord{stored}, list...)
	s.saveAnalyses(ctx, list)
	return rec
}

// saveAnalyses writes at most MaxAnalyses compacted records. When that
// fails it retries with the MaxMinimalAnalyses newest records reduced to
// their summary fields, and after that gives up.
func (s *Store) saveAnalyses(ctx context.Context, list []domain.HealthAnalysisRecord) {
	err := s.write(ctx, SlotAnalyses, compact(list))
	if err == nil {
		return
	}
	s.logger.Warn("failed to save analyses", zap.Error(err))
	s.metrics.ObserveStoreDegraded(stageMinimal)

	err = s.write(ctx, SlotAnalyses, minimal(list))
	if err == nil {
		return
	}
	s.logger.Error("failed to save even minimal analyses", zap.Error(err))
	s.metrics.ObserveStoreDegraded(stageDropped)
}

func compact(list []domain.HealthAnalysisRecord) []domain.HealthAnalysisRecord {
	if len(list) > MaxAnalyses {
		list = list[:MaxAnalyses]
	}
	out := make([]domain.HealthAnalysisRecord, len(list))
	for i, rec := range list {
		rec.ImageURL = ""
		rec.Description = truncateRunes(rec.Description, MaxDescriptionLen)
		out[i] = rec
	}
	return out
}

func minimal(list []domain.HealthAnalysisRecord) []domain.HealthAnalysisRecord {
	if len(list) > MaxMinimalAnalyses {
		list = list[:MaxMinimalAnalyses]
	}
	out := make([]domain.HealthAnalysisRecord, len(list))
	for i, rec := range list {
		out[i] = domain.HealthAnalysisRecord{
			ID:         rec.ID,
			Type:       rec.Type,
			Date:       rec.Date,
			Result:     rec.Result,
			Confidence: rec.Confidence,
			Severity:   rec.Severity,
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
