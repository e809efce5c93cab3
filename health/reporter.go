package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/marcelsud/telegram-ragbot/webhook"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	defaultVerifyTimeout = 3 * time.Second
)

// Verifier is the part of the webhook manager the reporter reads
type Verifier interface {
	Verify(ctx context.Context) (webhook.Registration, error)
	Snapshot() webhook.Registration
}

// CheckFunc checks an optional dependency
type CheckFunc func(ctx context.Context) error

/* Status is recomputed on every health request
 * It is always served with HTTP 200; Ready carries the verdict
 */
type Status struct {
	Ready             bool                 `json:"ready"`
	Status            string               `json:"status"`
	ConfigValid       bool                 `json:"config_valid"`
	WebhookConfigured bool                 `json:"webhook_configured"`
	Mode              Mode                 `json:"mode"`
	UptimeSeconds     float64              `json:"uptime_seconds"`
	Webhook           webhook.Registration `json:"webhook"`
	Checks            map[string]string    `json:"checks,omitempty"`
	Error             string               `json:"error,omitempty"`
	Timestamp         time.Time            `json:"timestamp"`
}

// Reporter aggregates readiness for the hosting platform
type Reporter struct {
	verifier    Verifier
	configValid bool
	mode        Mode
	started     time.Time
	now         func() time.Time
	checks      map[string]CheckFunc

	VerifyTimeout time.Duration
}

// NewReporter creates a new reporter. configValid is fixed for the process lifetime.
func NewReporter(verifier Verifier, configValid bool, mode Mode, started time.Time) *Reporter {
	return &Reporter{
		verifier:      verifier,
		configValid:   configValid,
		mode:          mode,
		started:       started,
		now:           time.Now,
		checks:        make(map[string]CheckFunc),
		VerifyTimeout: defaultVerifyTimeout,
	}
}

// AddCheck registers an optional dependency check. A failing check degrades the status
// without affecting readiness.
func (r *Reporter) AddCheck(name string, fn CheckFunc) {
	r.checks[name] = fn
}

// Mode returns how updates reach the bot
func (r *Reporter) Mode() Mode {
	return r.mode
}

// Report never fails: internal errors turn into a degraded status
func (r *Reporter) Report(ctx context.Context) (s Status) {
	now := r.now().UTC()
	s = Status{
		Status:        StatusHealthy,
		ConfigValid:   r.configValid,
		Mode:          r.mode,
		UptimeSeconds: now.Sub(r.started).Seconds(),
		Timestamp:     now,
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.Ready = false
			s.Status = StatusDegraded
			s.Error = fmt.Sprintf("health check panicked: %v", rec)
		}
	}()

	var problems []string
	if !r.configValid {
		problems = append(problems, "configuration invalid")
	}

	if r.verifier == nil {
		problems = append(problems, "webhook manager unavailable")
	} else if r.mode == ModeDemo {
		s.Webhook = r.verifier.Snapshot()
	} else {
		vctx, cancel := context.WithTimeout(ctx, r.VerifyTimeout)
		reg, err := r.verifier.Verify(vctx)
		cancel()
		switch {
		case errors.Is(err, webhook.ErrBusy):
			// a register or clear is in flight; report the last known state
			reg = r.verifier.Snapshot()
		case err != nil:
			reg = r.verifier.Snapshot()
			problems = append(problems, err.Error())
		}
		s.Webhook = reg
	}
	s.WebhookConfigured = s.Webhook.Configured()
	if r.mode == ModeWebhook && !s.WebhookConfigured {
		problems = append(problems, "webhook not registered")
	}

	if len(r.checks) > 0 {
		s.Checks = make(map[string]string, len(r.checks))
		for name, fn := range r.checks {
			if err := fn(ctx); err != nil {
				s.Checks[name] = err.Error()
				problems = append(problems, name+" unavailable")
				continue
			}
			s.Checks[name] = "ok"
		}
	}

	s.Ready = s.ConfigValid && (s.WebhookConfigured || r.mode != ModeWebhook)
	if len(problems) > 0 {
		sort.Strings(problems)
		s.Status = StatusDegraded
		s.Error = strings.Join(problems, "; ")
	}
	return s
}

// Summary renders the status as a short chat message
func (r *Reporter) Summary(ctx context.Context) string {
	s := r.Report(ctx)

	icon := "✅"
	if s.Status != StatusHealthy {
		icon = "⚠️"
	}
	webhookLine := "not registered"
	if s.WebhookConfigured {
		webhookLine = "registered"
	}
	uptime := time.Duration(s.UptimeSeconds * float64(time.Second)).Round(time.Second)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Status: %s\n", icon, s.Status)
	fmt.Fprintf(&b, "🤖 Mode: %s\n", s.Mode)
	fmt.Fprintf(&b, "🔗 Webhook: %s\n", webhookLine)
	fmt.Fprintf(&b, "⏱ Uptime: %s", uptime)
	return b.String()
}
