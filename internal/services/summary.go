package services

import (
	"context"
	"fmt"
	"sync"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/storage"
)

// SummaryService computes monthly, annual and all-time figures. Month
// summaries are cached per user and dropped on every write.
type SummaryService struct {
	storage *storage.SQLiteRepository
	cache   cache.Cache[core.MonthSummary]

	// gen counts invalidations per user; a summary computed across an
	// invalidation is not cached.
	mu  sync.Mutex
	gen map[string]uint64

	testHookLoaded func()
}

func NewSummaryService(storage *storage.SQLiteRepository, c cache.Cache[core.MonthSummary]) *SummaryService {
	return &SummaryService{storage: storage, cache: c, gen: make(map[string]uint64)}
}

func monthKey(userID string, year, month int) string {
	return fmt.Sprintf("%s%04d-%02d", userPrefix(userID), year, month)
}

func userPrefix(userID string) string {
	return "month:" + userID + ":"
}

// Invalidate drops every cached summary of the user.
func (s *SummaryService) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[userID]++
	s.cache.DeletePrefix(userPrefix(userID))
}

func (s *SummaryService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[userID]
}

// store caches ms unless the user's data was invalidated since gen was read.
func (s *SummaryService) store(userID, key string, gen uint64, ms core.MonthSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[userID] != gen {
		return
	}
	s.cache.Set(key, ms)
}

func (s *SummaryService) MonthSummary(ctx context.Context, userID string, year, month int) (core.MonthSummary, error) {
	if month < 1 || month > 12 {
		return core.MonthSummary{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	key := monthKey(userID, year, month)
	var gen uint64
	if s.cache != nil {
		if ms, ok := s.cache.Get(key); ok {
			return ms, nil
		}
		gen = s.generation(userID)
	}

	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month, core.DaysIn(year, month))
	txs, err := s.storage.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("month summary: %w", err)
	}
	if s.testHookLoaded != nil {
		s.testHookLoaded()
	}
	ms := core.SummarizeMonth(year, month, txs)
	if s.cache != nil {
		s.store(userID, key, gen, ms)
	}
	return ms, nil
}

// AnnualSummary returns twelve month summaries plus yearly totals.
func (s *SummaryService) AnnualSummary(ctx context.Context, userID string, year int) (core.AnnualSummary, error) {
	a := core.AnnualSummary{Year: year, Months: make([]core.MonthSummary, 0, 12)}
	for m := 1; m <= 12; m++ {
		ms, err := s.MonthSummary(ctx, userID, year, m)
		if err != nil {
			return core.AnnualSummary{}, err
		}
		a.Months = append(a.Months, ms)
		a.Income = a.Income.Add(ms.Income)
		a.Expense = a.Expense.Add(ms.Expense)
	}
	a.Total = a.Income.Sub(a.Expense)
	return a, nil
}

// Balance returns all-time income minus expense. It is the money available
// for vault deposits.
func (s *SummaryService) Balance(ctx context.Context, userID string) (core.Summary, error) {
	income, expense, err := s.storage.Totals(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("balance: %w", err)
	}
	return core.Summary{Income: income, Expense: expense, Total: income.Sub(expense)}, nil
}
