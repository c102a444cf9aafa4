package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sterilizer_control/internal/models"
	"sterilizer_control/internal/repository"
)

// HistoryFilter narrows audit queries. Zero times mean unbounded; Result and
// Code apply to the record kinds that carry them.
type HistoryFilter struct {
	From   time.Time
	To     time.Time
	Result string
	Code   string
}

var errInvalidTimeRange = errors.New("invalid time range: from must be <= to")

type HistoryService struct {
	cycles repository.CycleRepo
	events repository.EventRepo
	vacuum repository.VacuumRepo
}

func NewHistoryService(cycles repository.CycleRepo, events repository.EventRepo, vacuum repository.VacuumRepo) *HistoryService {
	return &HistoryService{cycles: cycles, events: events, vacuum: vacuum}
}

var _ History = (*HistoryService)(nil)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func (f HistoryFilter) normalize() (HistoryFilter, error) {
	f.From = normalizeToUTC(f.From)
	f.To = normalizeToUTC(f.To)
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return HistoryFilter{}, errInvalidTimeRange
	}
	f.Result = strings.ToLower(strings.TrimSpace(f.Result))
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	return f, nil
}

func (s *HistoryService) ListCycles(ctx context.Context, f HistoryFilter) ([]models.CycleSummary, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.cycles.List(ctx, f.From, f.To, f.Result)
}

func (s *HistoryService) ListErrors(ctx context.Context, f HistoryFilter) ([]models.ErrorEvent, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, f.From, f.To, f.Code)
}

func (s *HistoryService) ListVacuumTests(ctx context.Context, f HistoryFilter) ([]models.VacuumTestResult, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.vacuum.List(ctx, f.From, f.To)
}
