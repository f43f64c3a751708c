package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/larder/internal/expiry"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

const (
	defaultInterval = time.Hour
	sentRetention   = 7 * 24 * time.Hour
	maxNamesInBody  = 3
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload Payload) error
}

// Scheduler sends each subscribed user at most one expiry reminder per day.
type Scheduler struct {
	mu          sync.RWMutex
	sender      Sender
	push        *store.PushStore
	inventory   *store.InventoryStore
	ingredients *store.IngredientStore
	logger      *slog.Logger
	interval    time.Duration
	now         func() time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewScheduler(sender Sender, pushStore *store.PushStore, inventory *store.InventoryStore, ingredients *store.IngredientStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:      sender,
		push:        pushStore,
		inventory:   inventory,
		ingredients: ingredients,
		logger:      logger,
		interval:    defaultInterval,
		now:         time.Now,
	}
}

// Start begins the scheduler loop. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Check(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Check runs one pass over every subscribed user.
func (s *Scheduler) Check(ctx context.Context) {
	now := s.now().UTC()

	if err := s.push.CleanupSent(ctx, now.Add(-sentRetention)); err != nil {
		s.logger.Error("cleanup sent notifications", "error", err)
	}

	userIDs, err := s.push.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("list subscribed users", "error", err)
		return
	}
	for _, uid := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.remind(ctx, uid, now); err != nil {
			s.logger.Error("expiry reminder", "user_id", uid, "error", err)
		}
	}
}

func (s *Scheduler) remind(ctx context.Context, userID string, now time.Time) error {
	refID := now.Format("2006-01-02")
	sent, err := s.push.WasSent(ctx, userID, model.NotifTypeExpiringSoon, refID)
	if err != nil || sent {
		return err
	}

	rows, err := s.inventory.ListExpiringBefore(ctx, userID, expiry.Cutoff(now, expiry.SoonDays))
	if err != nil {
		return err
	}
	// Already expired items are left to the inventory view.
	rows = slices.DeleteFunc(rows, func(r model.InventoryItem) bool { return r.ExpiresAt.Before(now) })
	if len(rows) == 0 {
		return nil
	}
	expiry.Sort(rows, func(r model.InventoryItem) *time.Time { return r.ExpiresAt })

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.IngredientID
	}
	ingredients, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	var names []string
	for _, r := range rows {
		if ing, ok := ingredients[r.IngredientID]; ok && !slices.Contains(names, ing.Name) {
			names = append(names, ing.Name)
		}
	}

	subs, err := s.push.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	payload := reminderPayload(len(rows), names, refID)
	for _, sub := range subs {
		err := s.sender.Send(ctx, sub, payload)
		switch {
		case errors.Is(err, ErrExpired):
			s.logger.Info("removing expired subscription", "user_id", userID, "subscription_id", sub.ID)
			if err := s.push.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				s.logger.Error("delete expired subscription", "error", err)
			}
		case err != nil:
			s.logger.Warn("send expiry reminder", "user_id", userID, "subscription_id", sub.ID, "error", err)
		}
	}
	return s.push.RecordSent(ctx, userID, model.NotifTypeExpiringSoon, refID, now)
}

func reminderPayload(count int, names []string, day string) Payload {
	body := fmt.Sprintf("%d items expire in the next %d days", count, expiry.SoonDays)
	if count == 1 {
		body = fmt.Sprintf("1 item expires in the next %d days", expiry.SoonDays)
	}
	if len(names) > 0 {
		shown := names
		if len(shown) > maxNamesInBody {
			shown = shown[:maxNamesInBody]
		}
		body += ": " + strings.Join(shown, ", ")
		if len(names) > maxNamesInBody {
			body += fmt.Sprintf(" and %d more", len(names)-maxNamesInBody)
		}
	}
	return Payload{
		Title: "Use it before you lose it",
		Body:  body,
		URL:   "/inventory?filter=expiring",
		Tag:   "expiring-" + day,
	}
}
