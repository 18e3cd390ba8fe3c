// Package worker consumes queued notifications and hands them to their
// delivery channel.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintastic/internal/amqp"
	"fintastic/internal/cache"
	applog "fintastic/internal/log"
	"fintastic/internal/notify"
)

const (
	seenCapacity = 10000
	seenTTL      = 24 * time.Hour
)

// AlertWorker delivers consumed notifications exactly once per message id
// within seenTTL. A redelivered message that was already handed off is
// acknowledged without a second delivery.
type AlertWorker struct {
	deliver notify.Notifier
	seen    *cache.LRUCache[struct{}]
	logger  *applog.Logger

	processed, duplicates, dropped, failed atomic.Int64
}

// Stats are cumulative counters since construction.
type Stats struct {
	Processed  int64
	Duplicates int64
	Dropped    int64
	Failed     int64
}

func NewAlertWorker(deliver notify.Notifier, logger *applog.Logger) *AlertWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &AlertWorker{
		deliver: deliver,
		seen:    cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleMessage satisfies amqp.MessageHandler. Messages that can never be
// delivered are dropped with a warning instead of being requeued.
func (w *AlertWorker) HandleMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.ID == "" || msg.Recipient == "" {
		w.dropped.Add(1)
		w.logger.WarnContext(ctx, "Dropping notification without id or recipient",
			"message_id", msg.ID,
			"template", msg.TemplateID)
		return nil
	}
	if _, ok := w.seen.Get(msg.ID); ok {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "Skipping already delivered notification", "message_id", msg.ID)
		return nil
	}
	if _, err := notify.Render(msg.TemplateID, msg.Params); err != nil {
		w.dropped.Add(1)
		w.logger.WarnContext(ctx, "Dropping undeliverable notification",
			"message_id", msg.ID,
			applog.FieldError, err)
		return nil
	}

	res, err := w.deliver.Send(ctx, msg.Recipient, msg.TemplateID, msg.Params)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("deliver %s: %w", msg.ID, err)
	}
	w.seen.Set(msg.ID, struct{}{})
	w.processed.Add(1)

	w.logger.InfoContext(ctx, "Delivered notification",
		"message_id", msg.ID,
		"template", msg.TemplateID,
		"channel", res.Channel,
		applog.FieldOwnerID, msg.Recipient,
		"queued_for_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}

// CleanExpired drops expired message ids so a cache.Manager can sweep them.
func (w *AlertWorker) CleanExpired() int {
	return w.seen.CleanExpired()
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Processed:  w.processed.Load(),
		Duplicates: w.duplicates.Load(),
		Dropped:    w.dropped.Load(),
		Failed:     w.failed.Load(),
	}
}
