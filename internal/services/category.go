package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// CategoryService manages per-user categories. Defaults are seeded lazily
// on first access and are read-only.
type CategoryService struct {
	storage  *storage.SQLiteRepository
	notifier notifier
	now      func() time.Time
}

func NewCategoryService(storage *storage.SQLiteRepository, n notifier, now func() time.Time) *CategoryService {
	return &CategoryService{storage: storage, notifier: n, now: now}
}

// EnsureDefaults seeds the default categories when the user has none. Their
// ids are derived from user, type and name, so devices seeding independently
// converge on the same rows.
func (s *CategoryService) EnsureDefaults(ctx context.Context, userID string) error {
	count, err := s.storage.CountCategories(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := s.now()
	order := map[core.TransactionType]int{}
	cats := make([]core.Category, 0, len(core.DefaultCategories))
	for _, d := range core.DefaultCategories {
		cats = append(cats, core.Category{
			ID:        core.DefaultCategoryID(userID, d.Type, d.Name),
			UserID:    userID,
			Name:      d.Name,
			Type:      d.Type,
			Color:     d.Color,
			IsDefault: true,
			Order:     order[d.Type],
			CreatedAt: now,
			UpdatedAt: now,
		})
		order[d.Type]++
	}
	if _, err := s.storage.SeedCategories(ctx, cats); err != nil {
		return fmt.Errorf("seed default categories: %w", err)
	}
	changes := make([]storage.Change, 0, len(cats))
	for _, c := range cats {
		changes = append(changes, upserted(userID, storage.EntityCategories, c.ID))
	}
	s.notifier.notify(ctx, changes...)
	return nil
}

// List returns the categories of typ, or all of them when typ is empty.
func (s *CategoryService) List(ctx context.Context, userID string, typ core.TransactionType) ([]core.Category, error) {
	if typ != "" && !typ.Valid() {
		return nil, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	if err := s.EnsureDefaults(ctx, userID); err != nil {
		return nil, err
	}
	return s.storage.ListCategories(ctx, userID, typ)
}

func (s *CategoryService) Create(ctx context.Context, userID, name string, typ core.TransactionType, color string) (core.Category, error) {
	if err := s.EnsureDefaults(ctx, userID); err != nil {
		return core.Category{}, err
	}
	now := s.now()
	c := core.Category{
		ID:        core.NewID(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Type:      typ,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	order, err := s.storage.NextCategoryOrder(ctx, userID, typ)
	if err != nil {
		return core.Category{}, err
	}
	c.Order = order

	if err := s.storage.SaveCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityCategories, c.ID))
	return c, nil
}

// Rename changes a user category's name and, when color is not empty, its color.
func (s *CategoryService) Rename(ctx context.Context, userID, id, name, color string) (core.Category, error) {
	c, err := s.storage.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsDefault {
		return core.Category{}, core.ErrDefaultCategory
	}
	c.Name = strings.TrimSpace(name)
	if color != "" {
		c.Color = color
	}
	c.UpdatedAt = s.now()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.storage.SaveCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityCategories, c.ID))
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	c, err := s.storage.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return core.ErrDefaultCategory
	}
	if err := s.storage.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	s.notifier.notify(ctx, deleted(userID, storage.EntityCategories, id))
	return nil
}

// Reorder takes every category id of typ in the desired order and rewrites
// positions 0..n-1.
func (s *CategoryService) Reorder(ctx context.Context, userID string, typ core.TransactionType, ids []string) error {
	if typ == "" {
		return &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	current, err := s.List(ctx, userID, typ)
	if err != nil {
		return err
	}
	if len(ids) != len(current) {
		return &core.ValidationError{Field: "ids", Err: fmt.Errorf("expected %d ids, got %d", len(current), len(ids))}
	}
	known := make(map[string]bool, len(current))
	for _, c := range current {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return &core.ValidationError{Field: "ids", Err: fmt.Errorf("unknown or repeated category %q", id)}
		}
		known[id] = false
	}

	if err := s.storage.ReorderCategories(ctx, userID, ids); err != nil {
		return err
	}
	changes := make([]storage.Change, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, upserted(userID, storage.EntityCategories, id))
	}
	s.notifier.notify(ctx, changes...)
	return nil
}
