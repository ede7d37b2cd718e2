package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/dayoff"
	"finboard/internal/storage"
)

// DayOffService stores day-off rules and evaluates dates against them.
type DayOffService struct {
	storage  *storage.SQLiteRepository
	notifier notifier
	now      func() time.Time
	baseline dayoff.Baseline
}

func NewDayOffService(storage *storage.SQLiteRepository, n notifier, now func() time.Time) *DayOffService {
	return &DayOffService{storage: storage, notifier: n, now: now, baseline: dayoff.DefaultBaseline}
}

// Check is the verdict for a single date from both engines.
type Check struct {
	Date     core.Date             `json:"date"`
	Rules    dayoff.Result         `json:"rules"`
	Baseline dayoff.BaselineResult `json:"baseline"`
}

// CreateRule validates rec and stores it as a new rule.
func (s *DayOffService) CreateRule(ctx context.Context, userID string, rec dayoff.Record) (dayoff.Record, error) {
	now := s.now()
	rec.ID = core.NewID()
	rec.UserID = userID
	rec.Description = strings.TrimSpace(rec.Description)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rule, err := rec.Rule()
	if err != nil {
		return dayoff.Record{}, &core.ValidationError{Field: "rule", Err: err}
	}
	rec = dayoff.ToRecord(rule)
	if err := s.storage.SaveDayOffRule(ctx, rec); err != nil {
		return dayoff.Record{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityDayOffRules, rec.ID))
	return rec, nil
}

func (s *DayOffService) ListRules(ctx context.Context, userID string) ([]dayoff.Record, error) {
	return s.storage.ListDayOffRules(ctx, userID)
}

func (s *DayOffService) DeleteRule(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteDayOffRule(ctx, userID, id); err != nil {
		return err
	}
	s.notifier.notify(ctx, deleted(userID, storage.EntityDayOffRules, id))
	return nil
}

// Rules loads the user's rules in evaluation order. Stored rows that no
// longer validate are skipped.
func (s *DayOffService) Rules(ctx context.Context, userID string) ([]dayoff.Rule, error) {
	recs, err := s.storage.ListDayOffRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules := make([]dayoff.Rule, 0, len(recs))
	for _, rec := range recs {
		r, err := rec.Rule()
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid day-off rule", "id", rec.ID, "error", err)
			continue
		}
		rules = append(rules, r)
	}
	return dayoff.Order(rules), nil
}

func (s *DayOffService) Check(ctx context.Context, userID string, d core.Date) (Check, error) {
	rules, err := s.Rules(ctx, userID)
	if err != nil {
		return Check{}, err
	}
	return Check{
		Date:     d,
		Rules:    dayoff.Evaluate(d, rules),
		Baseline: s.baseline.Evaluate(d),
	}, nil
}

func (s *DayOffService) Calendar(ctx context.Context, userID string, year, month int) ([]dayoff.Day, error) {
	if month < 1 || month > 12 {
		return nil, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	rules, err := s.Rules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.baseline.Month(year, month, rules), nil
}
