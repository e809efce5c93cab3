package telegram

import (
	"context"
	"encoding/json"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	longPollTimeout = 30
	errorBackoff    = 5 * time.Second
)

// UpdateSource is the part of the client the poller needs
type UpdateSource interface {
	Updates(ctx context.Context, offset, timeout int) (tgbotapi.UpdatesChannel, error)
	StopUpdates()
}

// UpdateHandler receives one update encoded the same way the provider posts it to a webhook
type UpdateHandler func(ctx context.Context, raw []byte)

/* Poller drives the getUpdates loop when no public webhook URL exists.
 * It only runs while the provider has no webhook registered.
 */
type Poller struct {
	source  UpdateSource
	handler UpdateHandler
	logger  zerolog.Logger
	offset  int

	Timeout int
	Backoff time.Duration
}

// NewPoller creates a new long-poll loop
func NewPoller(source UpdateSource, handler UpdateHandler, logger zerolog.Logger) *Poller {
	return &Poller{
		source:  source,
		handler: handler,
		logger:  logger,
		Timeout: longPollTimeout,
		Backoff: errorBackoff,
	}
}

// Run polls until ctx is cancelled. Failing to start the loop is retried after Backoff.
func (p *Poller) Run(ctx context.Context) error {
	updates, ok := p.start(ctx)
	if !ok {
		return nil
	}
	defer p.source.StopUpdates()

	p.logger.Info().Msg("polling for updates")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopped")
			return nil
		case u, open := <-updates:
			if !open {
				return nil
			}
			raw, err := json.Marshal(u)
			if err != nil {
				p.logger.Warn().Err(err).Int("update_id", u.UpdateID).Msg("skipping unencodable update")
				continue
			}
			p.handler(ctx, raw)
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
		}
	}
}

func (p *Poller) start(ctx context.Context) (tgbotapi.UpdatesChannel, bool) {
	for {
		updates, err := p.source.Updates(ctx, p.offset, p.Timeout)
		if err == nil {
			return updates, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
		p.logger.Error().Err(err).Msg("starting long poll")
		select {
		case <-time.After(p.Backoff):
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Offset is the next update_id the poller will ask for
func (p *Poller) Offset() int {
	return p.offset
}
