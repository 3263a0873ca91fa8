package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"subsum/internal/bot"
	"subsum/internal/summarizer"
)

const serviceName = "Subtitle Summary Service"

var ErrNoSummary = errors.New("no summary is available")

// Outcome classifies a batch run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Loader turns a source reference into subtitle text.
type Loader func(source string) (string, error)

// Notifier delivers summaries and operational notices.
type Notifier interface {
	SendSummary(ctx context.Context, title string, summary string) error
	SendSystemNotification(ctx context.Context, level bot.Level, title string, body string) error
	WithTyping(ctx context.Context, fn func() error) error
}

// Item is the result for one source.
type Item struct {
	Source  string
	Summary string
	Err     error
}

// Result aggregates a batch run.
type Result struct {
	Items     []Item
	Successes int
	Failures  int
}

func (r Result) Outcome() Outcome {
	switch {
	case r.Failures == 0:
		return OutcomeSuccess
	case r.Successes > 0:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}

func (r Result) FailedSources() []string {
	var failed []string
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item.Source)
		}
	}

	return failed
}

// Stats describes the service configuration.
type Stats struct {
	Service   string
	AIService string
	Model     string
	Status    string
}

// Service summarizes batches of subtitle sources one after another.
type Service struct {
	load      Loader
	generator summarizer.Summarizer
	notifier  Notifier
	aiService string
	model     string
	log       *slog.Logger
}

type Option func(*Service)

// WithNotifier delivers summaries and batch notices through n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithProvider records the provider for Stats.
func WithProvider(aiService string, model string) Option {
	return func(s *Service) {
		s.aiService = aiService
		s.model = model
	}
}

func New(load Loader, generator summarizer.Summarizer, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		load:      load,
		generator: generator,
		notifier:  nopNotifier{},
		aiService: "unknown",
		model:     "unknown",
		log:       log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Stats() Stats {
	return Stats{
		Service:   serviceName,
		AIService: s.aiService,
		Model:     s.model,
		Status:    "ready",
	}
}

// Summarize processes sources in order. Per-source failures are recorded in
// the result; partial and total failures trigger a notification.
func (s *Service) Summarize(ctx context.Context, sources []string, short bool) Result {
	s.log.InfoContext(ctx, "Summarizing sources",
		"sourceCount", len(sources),
		"short", short)

	result := Result{Items: make([]Item, 0, len(sources))}

	for i, source := range sources {
		if ctx.Err() != nil {
			result.Items = append(result.Items, Item{Source: source, Err: ctx.Err()})
			result.Failures++
			continue
		}

		s.log.InfoContext(ctx, "Processing source",
			"index", i+1,
			"sourceCount", len(sources),
			"source", source)

		item := s.SummarizeOne(ctx, source, short)
		if item.Err != nil {
			result.Failures++
		} else {
			result.Successes++
		}
		result.Items = append(result.Items, item)
	}

	s.report(ctx, result)

	return result
}

// SummarizeOne loads, summarizes and delivers a single source.
func (s *Service) SummarizeOne(ctx context.Context, source string, short bool) Item {
	item := Item{Source: source}

	text, err := s.load(source)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load subtitle",
			"error", err,
			"source", source)

		item.Err = fmt.Errorf("load subtitle: %w", err)
		return item
	}

	s.log.InfoContext(ctx, "Subtitle is loaded",
		"source", source,
		"subtitleLength", utf8.RuneCountInString(text))

	var (
		summary string
		ok      bool
	)
	_ = s.notifier.WithTyping(ctx, func() error {
		if short {
			summary, ok = s.generator.ShortSummary(ctx, text)
		} else {
			summary, ok = s.generator.FullSummary(ctx, text)
		}
		return nil
	})
	if !ok {
		item.Err = ErrNoSummary
		return item
	}
	item.Summary = summary

	if err = s.notifier.SendSummary(ctx, sourceTitle(source), summary); err != nil {
		s.log.ErrorContext(ctx, "Failed to deliver summary",
			"error", err,
			"source", source)
	}

	return item
}

func (s *Service) report(ctx context.Context, result Result) {
	total := len(result.Items)

	switch result.Outcome() {
	case OutcomeSuccess:
		s.log.InfoContext(ctx, "All sources are summarized",
			"successCount", result.Successes)

	case OutcomePartial:
		s.log.WarnContext(ctx, "Some sources failed",
			"successCount", result.Successes,
			"failureCount", result.Failures,
			"failedSources", result.FailedSources())

		s.notify(ctx, bot.LevelWarning, "Summary partially failed",
			fmt.Sprintf("Succeeded: %d\nFailed: %d\n\nFailed sources:\n%s",
				result.Successes, result.Failures, strings.Join(result.FailedSources(), "\n")))

	case OutcomeFailure:
		if total == 0 {
			return
		}

		s.log.ErrorContext(ctx, "All sources failed",
			"failureCount", result.Failures,
			"failedSources", result.FailedSources())

		s.notify(ctx, bot.LevelError, "Summary service failed",
			fmt.Sprintf("All %d sources failed.\n\nFailed sources:\n%s",
				total, strings.Join(result.FailedSources(), "\n")))
	}
}

func (s *Service) notify(ctx context.Context, level bot.Level, title string, body string) {
	if err := s.notifier.SendSystemNotification(ctx, level, title, body); err != nil {
		s.log.WarnContext(ctx, "Failed to send system notification",
			"error", err,
			"level", level,
			"title", title)
	}
}

func sourceTitle(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type nopNotifier struct{}

func (nopNotifier) SendSummary(context.Context, string, string) error { return nil }

func (nopNotifier) SendSystemNotification(context.Context, bot.Level, string, string) error {
	return nil
}

func (nopNotifier) WithTyping(_ context.Context, fn func() error) error { return fn() }
