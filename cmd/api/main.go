package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/telegram-ragbot/config"
	"github.com/marcelsud/telegram-ragbot/health"
	"github.com/marcelsud/telegram-ragbot/internal/http/chi"
	"github.com/marcelsud/telegram-ragbot/metrics"
	"github.com/marcelsud/telegram-ragbot/persona"
	"github.com/marcelsud/telegram-ragbot/rag"
	"github.com/marcelsud/telegram-ragbot/telegram"
	"github.com/marcelsud/telegram-ragbot/update"
	redisstore "github.com/marcelsud/telegram-ragbot/update/redis"
	"github.com/marcelsud/telegram-ragbot/webhook"
	"github.com/rs/zerolog"
)

const registerTimeout = 15 * time.Second

/* main only wires packages together.
 * Imports flow one way: cmd imports the domain packages, which import storage and transport.
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := httplog.NewLogger("telegram-ragbot", httplog.Options{
		JSON:     cfg.IsProduction(),
		Concise:  !cfg.IsProduction(),
		LogLevel: logLevel(cfg.LogLevel),
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()
	started := time.Now()

	mode := health.ModePolling
	switch {
	case cfg.IsDemoMode():
		mode = health.ModeDemo
	case cfg.WebhookURL != "":
		mode = health.ModeWebhook
	}

	client := telegram.NewClient(cfg.Token,
		telegram.WithBaseURL(cfg.TelegramAPIURL),
		telegram.WithLogger(logger.With().Str("component", "telegram").Logger()),
	)
	manager := webhook.NewManager(client, cfg.WebhookPath, cfg.WebhookSecret)

	loader := persona.NewLoader()
	if cfg.PersonaFile != "" {
		if err := loader.Load(cfg.PersonaFile); err != nil {
			return err
		}
	}
	p := loader.Persona()

	var (
		generator rag.Generator
		embedder  rag.Embedder
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := rag.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, rag.GeminiOptions{
			Model:             cfg.GeminiModel,
			SystemInstruction: p.SystemInstruction,
			Temperature:       0.7,
			MaxOutputTokens:   1000,
		})
		if err != nil {
			return err
		}
		defer gemini.Close()
		generator = gemini

		emb, err := rag.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return err
		}
		defer emb.Close()
		embedder = emb
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, answering free text with canned replies")
	}

	corpus := rag.NewCorpus(cfg.DocumentsDir, embedder)
	loadDocuments(ctx, corpus, logger)
	responder := rag.NewService(generator, p,
		rag.WithRetriever(corpus, 0),
		rag.WithLogger(logger.With().Str("component", "rag").Logger()),
	)

	reporter := health.NewReporter(manager, true, mode, started)

	var (
		dedup      update.Deduplicator
		keyCounter metrics.KeyCounter
	)
	if cfg.RedisAddr != "" {
		store, err := redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DedupTTL)
		if err != nil {
			return err
		}
		defer store.Close()
		dedup, keyCounter = store, store
		reporter.AddCheck("redis", store.Ping)
	} else {
		mem := update.NewMemoryDeduplicator(cfg.DedupTTL)
		dedup = mem
		keyCounter = metrics.KeyCounterFunc(func(context.Context) (int64, error) {
			return int64(mem.Len()), nil
		})
	}

	collector := metrics.NewBotCollector(nil, manager, keyCounter, started)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		return err
	}

	var sender update.Sender = client
	if mode == health.ModeDemo {
		sender = demoSender{logger: logger}
	}
	dispatcher := update.NewDispatcher(sender, responder, update.NewRouter(cfg.BotUsername), update.Options{
		Workers:   cfg.ReplyWorkers,
		QueueSize: cfg.ReplyQueueSize,
		Dedup:     dedup,
		Limiter:   update.NewChatLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		Persona:   p,
		Status:    reporter,
		Observer:  exporter,
		Logger:    logger.With().Str("component", "dispatcher").Logger(),
	})
	collector.SetDispatcher(dispatcher)

	r := chi.Handlers(chi.Config{
		BotName:       "@" + cfg.BotUsername,
		Mode:          mode.String(),
		WebhookPath:   cfg.WebhookPath,
		WebhookSecret: cfg.WebhookSecret,
		AdminToken:    cfg.AdminToken,
		DefaultURL:    cfg.WebhookURL,
		Production:    cfg.IsProduction(),
	}, chi.Dependencies{
		Updates:   dispatcher,
		Webhooks:  manager,
		Health:    reporter,
		Collector: collector,
		Metrics:   exporter.ServeHTTP(),
		Documents: corpus,
	}, logger)

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         cfg.Addr(),
		Handler:      r,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	var startup func(context.Context)
	switch mode {
	case health.ModeWebhook:
		startup = func(ctx context.Context) { registerWebhook(ctx, manager, cfg.WebhookURL, logger) }
	case health.ModePolling:
		startup = func(ctx context.Context) { poll(ctx, client, manager, dispatcher, logger) }
	default:
		logger.Warn().Msg("demo token configured, not contacting Telegram")
	}

	logger.Info().
		Str("addr", srv.Addr).
		Str("environment", cfg.Environment).
		Str("mode", mode.String()).
		Bool("rag", responder.Enabled()).
		Bool("operator_routes", cfg.OperatorRoutesEnabled()).
		Msg("listening")

	err = serve(ctx, srv, ln, cfg.ShutdownTimeout, startup)

	dispatcher.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if merr := exporter.Shutdown(shutdownCtx); merr != nil {
		logger.Warn().Err(merr).Msg("shutting down metrics")
	}
	return err
}

// registerWebhook failures are logged, not fatal; /health reports the bot as not ready
func registerWebhook(ctx context.Context, manager *webhook.Manager, publicURL string, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	reg, err := manager.Register(ctx, publicURL)
	if err != nil {
		logger.Error().Err(err).Msg("registering webhook")
		return
	}
	logger.Info().Str("endpoint", reg.Endpoint).Msg("webhook registered")
}

// poll drops any webhook, since the provider refuses getUpdates while one is set
func poll(ctx context.Context, client *telegram.Client, manager *webhook.Manager, dispatcher *update.Dispatcher, logger zerolog.Logger) {
	clearCtx, cancel := context.WithTimeout(ctx, registerTimeout)
	err := manager.Clear(clearCtx)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("clearing webhook before polling")
	}

	log := logger.With().Str("component", "poller").Logger()
	// a full queue holds the poll loop back; the offset only advances once the update is queued
	poller := telegram.NewPoller(client, func(ctx context.Context, raw []byte) {
		for {
			_, err := dispatcher.Handle(ctx, raw)
			if !errors.Is(err, update.ErrQueueFull) {
				if err != nil {
					log.Warn().Err(err).Msg("skipping update")
				}
				return
			}
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}, log)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("poller stopped")
	}
}

// loadDocuments imports the document folder; the bot still answers without it
func loadDocuments(ctx context.Context, corpus *rag.Corpus, logger zerolog.Logger) {
	n, err := corpus.Load(ctx)
	switch {
	case errors.Is(err, rag.ErrEmptyCorpus):
		logger.Warn().Str("dir", corpus.Dir()).Msg("no documents found, answers are not grounded")
	case err != nil:
		logger.Error().Err(err).Str("dir", corpus.Dir()).Msg("loading documents")
	default:
		logger.Info().Str("dir", corpus.Dir()).Int("chunks", n).Msg("documents loaded")
	}
}

// serve answers on an already bound listener and starts the startup work beside it,
// so /health responds while the webhook is being registered.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, startup func(context.Context)) error {
	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, timeout, errShutdown)
	if startup != nil {
		go startup(ctx)
	}

	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errShutdown
}

func shutdown(server *http.Server, ctxShutdown context.Context, timeout time.Duration, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing server close after %s", timeout)
	default:
		errShutdown <- fmt.Errorf("shutting down server: %w", err)
	}
}

// demoSender logs replies instead of sending them
type demoSender struct {
	logger zerolog.Logger
}

func (s demoSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.logger.Info().Int64("chat_id", chatID).Str("text", text).Msg("demo reply")
	return nil
}

func logLevel(level string) string {
	switch strings.ToUpper(level) {
	case "WARNING":
		return "warn"
	default:
		return strings.ToLower(level)
	}
}
