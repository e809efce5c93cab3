package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marcelsud/telegram-ragbot/update"
	"github.com/marcelsud/telegram-ragbot/webhook"
)

// DispatcherSource exposes the in-process reply pipeline
type DispatcherSource interface {
	QueueDepth() int
	Stats() update.Stats
}

// SnapshotSource exposes the webhook registration without calling the provider
type SnapshotSource interface {
	Snapshot() webhook.Registration
}

// KeyCounter counts remembered update IDs
type KeyCounter interface {
	Count(ctx context.Context) (int64, error)
}

// KeyCounterFunc adapts a function to KeyCounter
type KeyCounterFunc func(ctx context.Context) (int64, error)

// Count calls f(ctx)
func (f KeyCounterFunc) Count(ctx context.Context) (int64, error) {
	return f(ctx)
}

// BotCollector implements the Collector interface for a running bot
type BotCollector struct {
	webhook SnapshotSource
	dedup   KeyCounter
	started time.Time
	now     func() time.Time

	mu         sync.RWMutex
	dispatcher DispatcherSource
}

// NewBotCollector creates a new collector. dedup may be nil.
func NewBotCollector(dispatcher DispatcherSource, hook SnapshotSource, dedup KeyCounter, started time.Time) *BotCollector {
	return &BotCollector{
		dispatcher: dispatcher,
		webhook:    hook,
		dedup:      dedup,
		started:    started,
		now:        time.Now,
	}
}

// SetDispatcher attaches the dispatcher once it exists. The dispatcher
// reports to the exporter, so it is usually built after the collector.
func (c *BotCollector) SetDispatcher(d DispatcherSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatcher = d
}

func (c *BotCollector) source() DispatcherSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dispatcher
}

// Collect gathers all metrics
func (c *BotCollector) Collect(ctx context.Context) (Metrics, error) {
	depth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	hook, err := c.GetWebhookState(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting webhook state: %w", err)
	}

	keys, err := c.GetDedupKeys(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting dedup keys: %w", err)
	}

	uptime, err := c.GetUptime(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting uptime: %w", err)
	}

	return Metrics{
		QueueDepth:    depth,
		Webhook:       hook,
		DedupKeys:     keys,
		Counters:      c.counters(),
		UptimeSeconds: uptime.Seconds(),
		Timestamp:     c.now().UTC(),
	}, nil
}

// GetQueueDepth returns the number of queued replies
func (c *BotCollector) GetQueueDepth(context.Context) (int64, error) {
	d := c.source()
	if d == nil {
		return 0, nil
	}
	return int64(d.QueueDepth()), nil
}

// GetWebhookState returns the cached registration
func (c *BotCollector) GetWebhookState(context.Context) (WebhookState, error) {
	if c.webhook == nil {
		return WebhookState{}, nil
	}
	reg := c.webhook.Snapshot()
	return WebhookState{
		Configured:     reg.Configured(),
		Verified:       reg.Verified,
		PendingUpdates: int64(reg.PendingUpdateCount),
		LastError:      reg.LastError,
	}, nil
}

// GetDedupKeys returns how many update IDs the deduplicator remembers
func (c *BotCollector) GetDedupKeys(ctx context.Context) (int64, error) {
	if c.dedup == nil {
		return 0, nil
	}
	return c.dedup.Count(ctx)
}

// GetUptime returns the time since the process started
func (c *BotCollector) GetUptime(context.Context) (time.Duration, error) {
	return c.now().Sub(c.started), nil
}

func (c *BotCollector) counters() Counters {
	d := c.source()
	if d == nil {
		return Counters{}
	}
	s := d.Stats()
	return Counters{
		Received:      s.Received,
		Rejected:      s.Rejected,
		Duplicates:    s.Duplicates,
		Ignored:       s.Ignored,
		Commands:      s.Commands,
		Messages:      s.Messages,
		RepliesSent:   s.RepliesSent,
		RepliesFailed: s.RepliesFailed,
		Dropped:       s.Dropped,
		RateLimited:   s.RateLimited,
		Fallbacks:     s.Fallbacks,
	}
}
