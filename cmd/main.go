package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"subsum/internal/bot"
	"subsum/internal/config"
	"subsum/internal/llm"
	"subsum/internal/ratelimiter"
	"subsum/internal/service"
	"subsum/internal/subtitle"
	"subsum/internal/summarizer"
	"subsum/internal/watcher"
)

const summarySeparator = "\n\n---\n\n"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("subsum", flag.ContinueOnError)
	short := fs.Bool("short", false, "Generate a short single-paragraph summary")
	watchDir := fs.String("watch", "", "Watch a directory for new subtitle files (overrides WATCH_DIR)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: subsum [-short] [-watch DIR] [subtitle files...]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config",
			"error", err)

		return 1
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *watchDir != "" {
		cfg.WatchDir = *watchDir
	}

	if cfg.WatchDir == "" && fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	svc, err := initService(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize service",
			"error", err,
			"aiService", cfg.AIService)

		return 1
	}

	stats := svc.Stats()
	log.InfoContext(ctx, "Service is initialized",
		"aiService", stats.AIService,
		"model", stats.Model,
		"telegram", cfg.TelegramEnabled())

	if cfg.WatchDir != "" {
		return runWatch(ctx, cfg, svc, *short, stdout, log, start)
	}

	result := svc.Summarize(ctx, fs.Args(), *short)
	writeSummaries(stdout, result.Items)

	log.InfoContext(ctx, "Exiting...",
		"outcome", result.Outcome(),
		"successCount", result.Successes,
		"failureCount", result.Failures,
		"uptimeSeconds", time.Since(start).Seconds())

	if result.Outcome() == service.OutcomeFailure {
		return 1
	}

	return 0
}

func runWatch(
	ctx context.Context,
	cfg config.Config,
	svc *service.Service,
	short bool,
	stdout io.Writer,
	log *slog.Logger,
	start time.Time,
) int {
	var mu sync.Mutex

	w, err := watcher.New(cfg.WatchDir, func(ctx context.Context, path string) error {
		item := svc.SummarizeOne(ctx, path, short)
		if item.Err != nil {
			return item.Err
		}

		mu.Lock()
		writeSummaries(stdout, []service.Item{item})
		mu.Unlock()

		return nil
	}, cfg.WatchMaxConcurrent, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create watcher",
			"error", err,
			"watchDir", cfg.WatchDir)

		return 1
	}
	defer func() {
		if err = w.Stop(); err != nil {
			log.WarnContext(ctx, "Failed to close watcher",
				"error", err,
				"watchDir", cfg.WatchDir)
		}
	}()

	err = w.Start(ctx)

	log.InfoContext(ctx, "Exiting...",
		"reason", err,
		"uptimeSeconds", time.Since(start).Seconds())

	if ctx.Err() == nil {
		return 1
	}

	return 0
}

func initService(ctx context.Context, cfg config.Config, log *slog.Logger) (*service.Service, error) {
	provider, err := llm.New(ctx, llm.Options{
		Service: cfg.AIService,
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create AI client: %w", err)
	}

	log.InfoContext(ctx, "AI client is initialized",
		"aiService", provider.Service(),
		"model", provider.Model())

	prompts, err := initPrompts(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	completer := ratelimiter.New(provider, cfg.AIMinInterval, cfg.AIBurst, log)

	generator, err := summarizer.New(completer, prompts, log)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	return service.New(subtitle.Load, generator, log,
		service.WithNotifier(initTelegramBot(ctx, cfg, log)),
		service.WithProvider(provider.Service(), provider.Model()),
	), nil
}

func initPrompts(ctx context.Context, cfg config.Config, log *slog.Logger) (summarizer.Prompts, error) {
	if cfg.PromptsFile == "" {
		return summarizer.DefaultPrompts(), nil
	}

	prompts, err := summarizer.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return summarizer.Prompts{}, fmt.Errorf("load prompts: %w", err)
	}

	log.InfoContext(ctx, "Prompts are loaded",
		"promptsFile", cfg.PromptsFile)

	return prompts, nil
}

func initTelegramBot(ctx context.Context, cfg config.Config, log *slog.Logger) service.Notifier {
	if !cfg.TelegramEnabled() {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is missing so summaries are only printed",
			"envVar", "TELEGRAM_TOKEN")

		return nil
	}

	b, err := bot.New(cfg.TelegramToken, cfg.TelegramChatID, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create Telegram bot so summaries are only printed",
			"error", err,
			"chatID", cfg.TelegramChatID)

		return nil
	}

	log.InfoContext(ctx, "Telegram bot is initialized",
		"chatID", cfg.TelegramChatID)

	return b
}

func writeSummaries(w io.Writer, items []service.Item) {
	var parts []string
	for _, item := range items {
		if item.Err != nil {
			continue
		}
		parts = append(parts, "# "+item.Source+"\n\n"+strings.TrimSpace(item.Summary))
	}

	if len(parts) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w, strings.Join(parts, summarySeparator))
}
