package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/core"
	"finboard/internal/dayoff"
	"finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/storage"
)

// Hydrator pulls a user's remote documents into the local store.
type Hydrator struct {
	storage   *storage.SQLiteRepository
	remote    remote.Store
	summaries *SummaryService
}

func NewHydrator(storage *storage.SQLiteRepository, store remote.Store, summaries *SummaryService) *Hydrator {
	return &Hydrator{storage: storage, remote: store, summaries: summaries}
}

// HydrateResult counts what a hydration pass did.
type HydrateResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Hydrate imports remote documents that are missing locally or newer than
// the local copy. Entities with a local change still in the outbox are left
// alone. Remote failures are logged and leave local data as is.
func (h *Hydrator) Hydrate(ctx context.Context, userID string) (HydrateResult, error) {
	var res HydrateResult
	if h.remote == nil {
		return res, nil
	}
	for _, entity := range storage.Entities {
		docs, err := h.remote.List(ctx, userID, entity)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			slog.WarnContext(ctx, "Failed to list remote documents",
				hydrateFields(userID).WithEntity(entity, "").WithError(err).ToSlice()...)
			res.Failed++
			continue
		}
		for _, doc := range docs {
			imported, err := h.hydrateOne(ctx, userID, entity, doc)
			switch {
			case err != nil:
				slog.WarnContext(ctx, "Failed to hydrate document",
					hydrateFields(userID).WithEntity(entity, "").WithError(err).ToSlice()...)
				res.Failed++
			case imported:
				res.Imported++
			default:
				res.Skipped++
			}
		}
	}
	if res.Imported > 0 {
		h.summaries.Invalidate(userID)
	}
	slog.InfoContext(ctx, "Hydration complete",
		append(hydrateFields(userID).ToSlice(),
			"imported", res.Imported,
			"skipped", res.Skipped,
			"failed", res.Failed)...)
	return res, nil
}

func hydrateFields(userID string) log.LogFields {
	return log.NewFields().WithComponent(log.ComponentSync).WithUserID(userID).WithOperation(log.OpHydrate)
}

func (h *Hydrator) hydrateOne(ctx context.Context, userID, entity string, doc remote.Document) (bool, error) {
	v, id, updatedAt, err := decodeEntity(entity, userID, doc)
	if err != nil {
		return false, err
	}
	// a queued local change, including a delete, wins until it is pushed
	unsynced, err := h.storage.HasUnsyncedChange(ctx, userID, entity, id)
	if err != nil {
		return false, err
	}
	if unsynced {
		return false, nil
	}
	local, err := h.storage.LoadEntity(ctx, userID, entity, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return false, err
	default:
		if !updatedAt.After(entityUpdatedAt(local)) {
			return false, nil
		}
	}
	if err := h.storage.Import(ctx, v); err != nil {
		return false, err
	}
	return true, nil
}

// decodeEntity converts a remote document into its local type, forcing the
// owner to userID.
func decodeEntity(entity, userID string, doc remote.Document) (any, string, time.Time, error) {
	switch entity {
	case storage.EntityTransactions:
		var t core.Transaction
		if err := remote.Decode(doc, &t); err != nil {
			return nil, "", time.Time{}, err
		}
		t.UserID = userID
		return t, t.ID, t.UpdatedAt, t.Validate()
	case storage.EntityGoals:
		var g core.Goal
		if err := remote.Decode(doc, &g); err != nil {
			return nil, "", time.Time{}, err
		}
		g.UserID = userID
		return g, g.ID, g.UpdatedAt, g.Validate()
	case storage.EntityCategories:
		var c core.Category
		if err := remote.Decode(doc, &c); err != nil {
			return nil, "", time.Time{}, err
		}
		c.UserID = userID
		return c, c.ID, c.UpdatedAt, c.Validate()
	case storage.EntityCards:
		var c core.Card
		if err := remote.Decode(doc, &c); err != nil {
			return nil, "", time.Time{}, err
		}
		c.UserID = userID
		return c, c.ID, c.UpdatedAt, c.Validate()
	case storage.EntityRecurring:
		var re core.RecurringExpense
		if err := remote.Decode(doc, &re); err != nil {
			return nil, "", time.Time{}, err
		}
		re.UserID = userID
		return re, re.ID, re.UpdatedAt, re.Validate()
	case storage.EntityDayOffRules:
		var rec dayoff.Record
		if err := remote.Decode(doc, &rec); err != nil {
			return nil, "", time.Time{}, err
		}
		rec.UserID = userID
		_, err := rec.Rule()
		return rec, rec.ID, rec.UpdatedAt, err
	}
	return nil, "", time.Time{}, fmt.Errorf("unknown entity %q", entity)
}

func entityUpdatedAt(v any) time.Time {
	switch x := v.(type) {
	case core.Transaction:
		return x.UpdatedAt
	case core.Goal:
		return x.UpdatedAt
	case core.Category:
		return x.UpdatedAt
	case core.Card:
		return x.UpdatedAt
	case core.RecurringExpense:
		return x.UpdatedAt
	case dayoff.Record:
		return x.UpdatedAt
	}
	return time.Time{}
}
