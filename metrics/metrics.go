package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the bot.
type Metrics struct {
	// QueueDepth is the number of replies waiting for a worker
	QueueDepth int64 `json:"queue_depth"`

	// Webhook is the last known provider registration
	Webhook WebhookState `json:"webhook"`

	// DedupKeys is the number of update IDs currently remembered
	DedupKeys int64 `json:"dedup_keys"`

	// Counters are cumulative since process start
	Counters Counters `json:"counters"`

	// UptimeSeconds since the process started
	UptimeSeconds float64 `json:"uptime_seconds"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// WebhookState is the part of the registration that is worth graphing.
type WebhookState struct {
	Configured     bool   `json:"configured"`
	Verified       bool   `json:"verified"`
	PendingUpdates int64  `json:"pending_updates"`
	LastError      string `json:"last_error,omitempty"`
}

// Counters mirror the dispatcher statistics.
type Counters struct {
	Received      int64 `json:"received"`
	Rejected      int64 `json:"rejected"`
	Duplicates    int64 `json:"duplicates"`
	Ignored       int64 `json:"ignored"`
	Commands      int64 `json:"commands"`
	Messages      int64 `json:"messages"`
	RepliesSent   int64 `json:"replies_sent"`
	RepliesFailed int64 `json:"replies_failed"`
	Dropped       int64 `json:"dropped"`
	RateLimited   int64 `json:"rate_limited"`
	Fallbacks     int64 `json:"fallbacks"`
}

// Collector defines the interface for collecting metrics from the bot.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueDepth returns the number of queued replies
	GetQueueDepth(ctx context.Context) (int64, error)

	// GetWebhookState returns the last known registration
	GetWebhookState(ctx context.Context) (WebhookState, error)

	// GetDedupKeys returns how many update IDs are remembered
	GetDedupKeys(ctx context.Context) (int64, error)

	// GetUptime returns the time since the process started
	GetUptime(ctx context.Context) (time.Duration, error)
}
