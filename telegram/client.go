package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://api.telegram.org"

// APIError is returned when the Bot API answers with ok=false
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

/* Client adapts tgbotapi to the bot's provider interfaces.
 * The BotAPI is created on first use because creating it calls getMe,
 * and the process must start even when Telegram is unreachable.
 * The token is part of every request URL, so errors are scrubbed
 * before they leave the client.
 */
type Client struct {
	token    string
	endpoint string
	httpc    *http.Client
	scrubber *strings.Replacer

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpc = c
	}
}

// WithBaseURL points the client at a different Bot API server
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.endpoint = strings.TrimRight(u, "/") + "/bot%s/%s"
	}
}

// WithLogger sends the library's own log lines (long-poll retries) to logger
func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		_ = tgbotapi.SetLogger(botLogger{logger: logger, scrubber: cl.scrubber})
	}
}

// NewClient creates a new Bot API client
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:    token,
		endpoint: tgbotapi.APIEndpoint,
		httpc:    &http.Client{Timeout: 70 * time.Second},
		scrubber: strings.NewReplacer(token, "[EXPUNGED]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// API returns the underlying BotAPI, authenticating with getMe on first use
func (c *Client) API(ctx context.Context) (*tgbotapi.BotAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}

	api, err := withContext(ctx, func() (*tgbotapi.BotAPI, error) {
		return tgbotapi.NewBotAPIWithClient(c.token, c.endpoint, c.httpc)
	})
	if err != nil {
		return nil, c.wrap("getMe", err)
	}
	c.api = api
	return api, nil
}

// SetWebhook registers the public URL the provider delivers updates to.
// The request is built from Params because WebhookConfig has no secret_token field.
func (c *Client) SetWebhook(ctx context.Context, p SetWebhookParams) error {
	params := make(tgbotapi.Params)
	params.AddNonEmpty("url", p.URL)
	params.AddNonEmpty("secret_token", p.SecretToken)
	params.AddBool("drop_pending_updates", p.DropPendingUpdates)
	if len(p.AllowedUpdates) > 0 {
		if err := params.AddInterface("allowed_updates", p.AllowedUpdates); err != nil {
			return fmt.Errorf("encoding allowed_updates: %w", err)
		}
	}

	return c.call(ctx, "setWebhook", func(api *tgbotapi.BotAPI) error {
		_, err := api.MakeRequest("setWebhook", params)
		return err
	})
}

// GetWebhookInfo returns the current registration as seen by the provider
func (c *Client) GetWebhookInfo(ctx context.Context) (WebhookInfo, error) {
	var info tgbotapi.WebhookInfo
	err := c.call(ctx, "getWebhookInfo", func(api *tgbotapi.BotAPI) error {
		var err error
		info, err = api.GetWebhookInfo()
		return err
	})
	if err != nil {
		return WebhookInfo{}, err
	}
	return WebhookInfo{
		URL:                  info.URL,
		HasCustomCertificate: info.HasCustomCertificate,
		PendingUpdateCount:   info.PendingUpdateCount,
		LastErrorDate:        int64(info.LastErrorDate),
		LastErrorMessage:     info.LastErrorMessage,
		MaxConnections:       info.MaxConnections,
	}, nil
}

// DeleteWebhook removes the registration. Removing an absent webhook succeeds.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.call(ctx, "deleteWebhook", func(api *tgbotapi.BotAPI) error {
		_, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
		return err
	})
}

// SendMessage posts a plain text message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", func(api *tgbotapi.BotAPI) error {
		_, err := api.Send(tgbotapi.NewMessage(chatID, text))
		return err
	})
}

// Updates starts the library's long-poll loop at offset
func (c *Client) Updates(ctx context.Context, offset, timeout int) (tgbotapi.UpdatesChannel, error) {
	api, err := c.API(ctx)
	if err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = timeout
	return api.GetUpdatesChan(cfg), nil
}

// StopUpdates ends the long-poll loop started by Updates
func (c *Client) StopUpdates() {
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	if api != nil {
		api.StopReceivingUpdates()
	}
}

func (c *Client) call(ctx context.Context, method string, fn func(api *tgbotapi.BotAPI) error) error {
	api, err := c.API(ctx)
	if err != nil {
		return err
	}
	_, err = withContext(ctx, func() (struct{}, error) {
		return struct{}{}, fn(api)
	})
	if err != nil {
		return c.wrap(method, err)
	}
	return nil
}

func (c *Client) wrap(method string, err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &APIError{Method: method, Code: tgErr.Code, Description: tgErr.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return fmt.Errorf("calling %s: %s", method, c.scrubber.Replace(err.Error()))
}

// withContext runs fn and stops waiting when ctx is done.
// tgbotapi requests carry no context; the HTTP client timeout bounds the abandoned call.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// botLogger implements tgbotapi.BotLogger on zerolog
type botLogger struct {
	logger   zerolog.Logger
	scrubber *strings.Replacer
}

func (l botLogger) Println(v ...interface{}) {
	l.logger.Warn().Msg(l.scrubber.Replace(strings.TrimSpace(fmt.Sprintln(v...))))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.logger.Warn().Msg(l.scrubber.Replace(fmt.Sprintf(format, v...)))
}
