package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/marcelsud/telegram-ragbot/telegram"
)

// Lifecycle is the set of operations exposed to operators and the health reporter
type Lifecycle interface {
	Register(ctx context.Context, publicURL string) (Registration, error)
	Clear(ctx context.Context) error
	Verify(ctx context.Context) (Registration, error)
	Snapshot() Registration
}

/* Manager is the single writer of the Registration snapshot.
 * Lifecycle operations are serialized through ops, and waiting for a turn honours
 * the caller's context. Snapshot never waits on the provider or on another operation.
 */
type Manager struct {
	provider Provider
	path     string
	secret   string
	now      func() time.Time

	ops chan struct{}
	mu  sync.RWMutex
	reg Registration
}

// NewManager creates a new lifecycle manager
func NewManager(provider Provider, path, secret string) *Manager {
	return &Manager{
		provider: provider,
		path:     path,
		secret:   secret,
		now:      func() time.Time { return time.Now().UTC() },
		ops:      make(chan struct{}, 1),
	}
}

// Register points the provider at publicURL + webhook path.
// Registering the URL already held is a no-op.
func (m *Manager) Register(ctx context.Context, publicURL string) (Registration, error) {
	if err := ValidatePublicURL(publicURL); err != nil {
		return m.Snapshot(), &RegistrationError{Op: "register", Description: err.Error(), Err: err}
	}

	if err := m.acquire(ctx, "register"); err != nil {
		return m.Snapshot(), err
	}
	defer m.release()

	current := m.Snapshot()
	endpoint := m.Endpoint(publicURL)
	if current.Endpoint == endpoint && current.LastError == "" {
		return current, nil
	}

	err := m.provider.SetWebhook(ctx, telegram.SetWebhookParams{
		URL:            endpoint,
		SecretToken:    m.secret,
		AllowedUpdates: []string{"message", "edited_message", "channel_post", "callback_query"},
	})
	if err != nil {
		rerr := newRegistrationError("register", err)
		m.update(func(r *Registration) { r.LastError = rerr.Description })
		return m.Snapshot(), rerr
	}

	now := m.now()
	m.update(func(r *Registration) {
		*r = Registration{
			URL:          publicURL,
			Endpoint:     endpoint,
			RegisteredAt: now,
		}
	})
	return m.Snapshot(), nil
}

// Clear removes the provider-side registration. Clearing an absent webhook succeeds.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.acquire(ctx, "clear"); err != nil {
		return err
	}
	defer m.release()

	if err := m.provider.DeleteWebhook(ctx, false); err != nil {
		rerr := newRegistrationError("clear", err)
		m.update(func(r *Registration) { r.LastError = rerr.Description })
		return rerr
	}
	m.update(func(r *Registration) { *r = Registration{} })
	return nil
}

// Verify refreshes the snapshot from the provider
func (m *Manager) Verify(ctx context.Context) (Registration, error) {
	if err := m.acquire(ctx, "verify"); err != nil {
		return m.Snapshot(), err
	}
	defer m.release()

	info, err := m.provider.GetWebhookInfo(ctx)
	if err != nil {
		rerr := newRegistrationError("verify", err)
		m.update(func(r *Registration) {
			r.Verified = false
			r.LastError = rerr.Description
		})
		return m.Snapshot(), rerr
	}

	now := m.now()
	m.update(func(r *Registration) {
		if info.URL == "" {
			*r = Registration{}
		} else if info.URL != r.Endpoint {
			r.Endpoint = info.URL
			r.URL = m.publicURLFor(info.URL)
		}
		r.Verified = true
		r.LastVerifiedAt = now
		r.PendingUpdateCount = info.PendingUpdateCount
		r.LastError = info.LastErrorMessage
	})
	return m.Snapshot(), nil
}

// Snapshot returns a copy of the last known registration
func (m *Manager) Snapshot() Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg
}

// Endpoint is the URL the provider is asked to deliver to
func (m *Manager) Endpoint(publicURL string) string {
	return strings.TrimRight(publicURL, "/") + m.path
}

func (m *Manager) publicURLFor(endpoint string) string {
	if base, ok := strings.CutSuffix(endpoint, m.path); ok && base != "" {
		return base
	}
	return endpoint
}

// acquire waits for the running lifecycle operation to finish, or fails with ErrBusy once ctx is done
func (m *Manager) acquire(ctx context.Context, op string) error {
	select {
	case m.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return &RegistrationError{
			Op:          op,
			Description: ErrBusy.Error(),
			Err:         errors.Join(ErrBusy, ctx.Err()),
		}
	}
}

func (m *Manager) release() {
	<-m.ops
}

func (m *Manager) update(fn func(r *Registration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.reg)
}

// ValidatePublicURL checks that u can receive provider deliveries
func ValidatePublicURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
