package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/telegram-ragbot/persona"
	"github.com/rs/zerolog"
)

const (
	defaultQueueSize    = 100
	defaultReplyTimeout = 30 * time.Second
	defaultDedupTTL     = 10 * time.Minute
)

// Sender delivers a reply to a chat
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Responder answers free-form text
type Responder interface {
	Answer(ctx context.Context, text string) (string, error)
	Fallback(text string) string
}

// StatusReporter renders the health summary shown by /status
type StatusReporter interface {
	Summary(ctx context.Context) string
}

// Observer receives outcome counts, typically for metrics
type Observer interface {
	ObserveUpdate(ctx context.Context, result string)
	ObserveReply(ctx context.Context, outcome string)
}

// Update results reported to the Observer
const (
	ResultAccepted  = "accepted"
	ResultDuplicate = "duplicate"
	ResultIgnored   = "ignored"
	ResultRejected  = "rejected"
	ResultDropped   = "dropped"
)

// Reply outcomes reported to the Observer
const (
	ReplySent     = "sent"
	ReplyFailed   = "failed"
	ReplyFallback = "fallback"
	ReplyLimited  = "rate_limited"
)

// Options tunes a Dispatcher. Zero values get sensible defaults.
type Options struct {
	Workers      int
	QueueSize    int
	ReplyTimeout time.Duration
	Dedup        Deduplicator
	Limiter      *ChatLimiter
	Persona      persona.Persona
	Status       StatusReporter
	Observer     Observer
	Logger       zerolog.Logger
}

// Result is what the caller learns synchronously about an update
type Result struct {
	UpdateID  int64
	State     State
	Route     RouteKind
	Duplicate bool
	Queued    bool
	JobID     string
}

// Stats are running counters since process start
type Stats struct {
	Received      int64
	Rejected      int64
	Duplicates    int64
	Ignored       int64
	Commands      int64
	Messages      int64
	RepliesSent   int64
	RepliesFailed int64
	Dropped       int64
	RateLimited   int64
	Fallbacks     int64
	LastUpdateAt  time.Time
}

type job struct {
	id     string
	update InboundUpdate
	route  Route
}

type commandHandler func(ctx context.Context, j job) string

/* Dispatcher validates, deduplicates and routes updates on the request path,
 * then hands reply work to a fixed pool of workers.
 * The request path never waits for a reply to be built or sent.
 */
type Dispatcher struct {
	sender    Sender
	responder Responder
	router    *Router
	opts      Options
	logger    zerolog.Logger
	handlers  map[Command]commandHandler

	queue   chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool

	received, rejected, duplicates, ignored atomic.Int64

	commands, messages atomic.Int64

	sent, failed, dropped, limited, fallback atomic.Int64

	lastUpdate atomic.Int64
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(sender Sender, responder Responder, router *Router, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = defaultReplyTimeout
	}
	if opts.Dedup == nil {
		opts.Dedup = NewMemoryDeduplicator(defaultDedupTTL)
	}
	if opts.Persona.Name == "" {
		opts.Persona = persona.Default()
	}

	d := &Dispatcher{
		sender:    sender,
		responder: responder,
		router:    router,
		opts:      opts,
		logger:    opts.Logger,
		queue:     make(chan job, opts.QueueSize),
	}
	d.handlers = map[Command]commandHandler{
		Start:  d.textReply(opts.Persona.Start),
		Help:   d.textReply(opts.Persona.Help),
		Stop:   d.textReply(opts.Persona.Stop),
		Status: d.statusReply,
	}

	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Handle takes one raw provider delivery through validation, dedup and routing.
// It fails with a *ValidationError for unusable payloads, and with ErrQueueFull or
// ErrStopped when the reply could not be queued. Reply failures are logged by the workers.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (Result, error) {
	d.received.Add(1)
	d.lastUpdate.Store(time.Now().UnixNano())

	u, err := Parse(raw)
	if err != nil {
		d.rejected.Add(1)
		d.observeUpdate(ctx, ResultRejected)
		d.logger.Warn().Err(err).Msg("rejecting update")
		return Result{State: Rejected}, err
	}
	res := Result{UpdateID: u.UpdateID, State: Validated}

	seen, err := d.opts.Dedup.Seen(ctx, u.UpdateID)
	if err != nil {
		d.logger.Warn().Err(err).Int64("update_id", u.UpdateID).Msg("dedup store unavailable, processing anyway")
	}
	if seen {
		d.duplicates.Add(1)
		d.observeUpdate(ctx, ResultDuplicate)
		d.logger.Debug().Int64("update_id", u.UpdateID).Msg("duplicate update")
		res.State, res.Duplicate = Handled, true
		return res, nil
	}

	route := d.router.Route(u)
	u.Command, u.Args = route.Command, route.Args
	res.State, res.Route = Routed, route.Kind

	switch route.Kind {
	case RouteCommand:
		d.commands.Add(1)
	case RouteFreeForm:
		d.messages.Add(1)
	default:
		d.ignored.Add(1)
		d.observeUpdate(ctx, ResultIgnored)
		res.State = Handled
		return res, nil
	}

	j := job{id: uuid.NewString(), update: u, route: route}
	if err := d.enqueue(j); err != nil {
		d.dropped.Add(1)
		d.observeUpdate(ctx, ResultDropped)
		if ferr := d.opts.Dedup.Forget(ctx, u.UpdateID); ferr != nil {
			d.logger.Warn().Err(ferr).Int64("update_id", u.UpdateID).Msg("forgetting dropped update")
		}
		d.logger.Error().
			Err(err).
			Int64("update_id", u.UpdateID).
			Int64("chat_id", u.ChatID).
			Msg("update not queued, asking for redelivery")
		return res, err
	}

	d.observeUpdate(ctx, ResultAccepted)
	d.logger.Debug().
		Int64("update_id", u.UpdateID).
		Int64("chat_id", u.ChatID).
		Str("route", route.Kind.String()).
		Str("command", route.Command.String()).
		Str("job_id", j.id).
		Msg("update queued")
	res.Queued, res.JobID = true, j.id
	return res, nil
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case d.queue <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new work, drains the queue and waits for the workers
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

// QueueDepth is the number of replies waiting for a worker
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// Stats returns a snapshot of the counters
func (d *Dispatcher) Stats() Stats {
	s := Stats{
		Received:      d.received.Load(),
		Rejected:      d.rejected.Load(),
		Duplicates:    d.duplicates.Load(),
		Ignored:       d.ignored.Load(),
		Commands:      d.commands.Load(),
		Messages:      d.messages.Load(),
		RepliesSent:   d.sent.Load(),
		RepliesFailed: d.failed.Load(),
		Dropped:       d.dropped.Load(),
		RateLimited:   d.limited.Load(),
		Fallbacks:     d.fallback.Load(),
	}
	if ns := d.lastUpdate.Load(); ns > 0 {
		s.LastUpdateAt = time.Unix(0, ns).UTC()
	}
	return s
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	log := d.logger.With().
		Str("job_id", j.id).
		Int64("update_id", j.update.UpdateID).
		Int64("chat_id", j.update.ChatID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			log.Error().Interface("panic", r).Msg("reply worker recovered")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.opts.ReplyTimeout)
	defer cancel()

	var text string
	switch j.route.Kind {
	case RouteCommand:
		h, ok := d.handlers[j.route.Command]
		if !ok {
			log.Error().Str("command", j.route.Command.String()).Msg("no handler for command")
			return
		}
		text = h(ctx, j)
	case RouteFreeForm:
		text = d.answer(ctx, log, j)
	}
	if text == "" {
		return
	}

	if err := d.sender.SendMessage(ctx, j.update.ChatID, text); err != nil {
		derr := &DownstreamError{Op: "sending reply", Err: err}
		d.failed.Add(1)
		d.observeReply(ctx, ReplyFailed)
		log.Error().Err(derr).Msg("reply not delivered")
		return
	}
	d.sent.Add(1)
	d.observeReply(ctx, ReplySent)
	log.Info().Str("route", j.route.Kind.String()).Msg("reply sent")
}

func (d *Dispatcher) textReply(text string) commandHandler {
	return func(context.Context, job) string {
		return text
	}
}

func (d *Dispatcher) statusReply(ctx context.Context, _ job) string {
	summary := "Status unavailable"
	if d.opts.Status != nil {
		summary = d.opts.Status.Summary(ctx)
	}
	s := d.Stats()

	var b strings.Builder
	b.WriteString(d.opts.Persona.StatusHeader)
	b.WriteString("\n\n")
	b.WriteString(summary)
	fmt.Fprintf(&b, "\n💬 Updates received: %d\n✉️ Replies sent: %d", s.Received, s.RepliesSent)
	return b.String()
}

func (d *Dispatcher) answer(ctx context.Context, log zerolog.Logger, j job) string {
	if d.opts.Limiter != nil && !d.opts.Limiter.Allow(j.update.ChatID) {
		d.limited.Add(1)
		d.observeReply(ctx, ReplyLimited)
		log.Warn().Msg("chat rate limited")
		return d.opts.Persona.RateLimited
	}

	input := Sanitize(j.route.Text, MaxInputLength)
	if input == "" {
		return d.responder.Fallback(input)
	}

	out, err := d.responder.Answer(ctx, input)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("empty answer")
	}
	if err != nil {
		derr := &DownstreamError{Op: "answering message", Err: err}
		d.fallback.Add(1)
		d.observeReply(ctx, ReplyFallback)
		log.Warn().Err(derr).Msg("using fallback reply")
		return d.responder.Fallback(input)
	}
	return out
}

func (d *Dispatcher) observeUpdate(ctx context.Context, result string) {
	if d.opts.Observer != nil {
		d.opts.Observer.ObserveUpdate(ctx, result)
	}
}

func (d *Dispatcher) observeReply(ctx context.Context, outcome string) {
	if d.opts.Observer != nil {
		d.opts.Observer.ObserveReply(ctx, outcome)
	}
}
