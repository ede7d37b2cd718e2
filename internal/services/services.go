// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"log/slog"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/remote"
	"finboard/internal/storage"
)

// Publisher announces committed local writes. *amqp.Client implements it.
type Publisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
}

// notifier publishes change notifications best-effort. A nil publisher
// means changes are only picked up by the outbox poller.
type notifier struct {
	pub Publisher
}

func (n notifier) notify(ctx context.Context, changes ...storage.Change) {
	if n.pub == nil {
		return
	}
	for _, c := range changes {
		msg := amqp.NewSyncMessage(c.UserID, c.Entity, c.EntityID, c.Op)
		if err := n.pub.PublishSync(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish sync message",
				"entity", c.Entity,
				"entity_id", c.EntityID,
				"error", err)
			// outbox poller will still push it
			return
		}
	}
}

func upserted(userID, entity, id string) storage.Change {
	return storage.Change{UserID: userID, Entity: entity, EntityID: id, Op: storage.OpUpsert}
}

func deleted(userID, entity, id string) storage.Change {
	return storage.Change{UserID: userID, Entity: entity, EntityID: id, Op: storage.OpDelete}
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Storage   *storage.SQLiteRepository
	Remote    remote.Store
	Publisher Publisher
	Cache     cache.Cache[core.MonthSummary]
	Now       func() time.Time
}

// Services bundles every service used by the HTTP API and the CLI.
type Services struct {
	Transactions *TransactionService
	Summaries    *SummaryService
	Goal         *GoalService
	Categories   *CategoryService
	Cards        *CardService
	Recurring    *RecurringService
	DayOff       *DayOffService
	Hydrator     *Hydrator
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	n := notifier{pub: d.Publisher}
	summaries := NewSummaryService(d.Storage, d.Cache)
	return &Services{
		Transactions: NewTransactionService(d.Storage, summaries, n, d.Now),
		Summaries:    summaries,
		Goal:         NewGoalService(d.Storage, summaries, n, d.Now),
		Categories:   NewCategoryService(d.Storage, n, d.Now),
		Cards:        NewCardService(d.Storage, n, d.Now),
		Recurring:    NewRecurringService(d.Storage, summaries, n, d.Now),
		DayOff:       NewDayOffService(d.Storage, n, d.Now),
		Hydrator:     NewHydrator(d.Storage, d.Remote, summaries),
	}
}
