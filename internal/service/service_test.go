package service_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"subsum/internal/bot"
	"subsum/internal/service"
)

type fakeSummarizer struct {
	mu         sync.Mutex
	fullCalls  int
	shortCalls int
	summaries  map[string]string
}

func (f *fakeSummarizer) FullSummary(_ context.Context, subtitle string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullCalls++

	s, ok := f.summaries[subtitle]
	return s, ok
}

func (f *fakeSummarizer) ShortSummary(_ context.Context, subtitle string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shortCalls++

	s, ok := f.summaries[subtitle]
	return s, ok
}

type notification struct {
	level bot.Level
	title string
	body  string
}

type recordingNotifier struct {
	summaries     []string
	notifications []notification
	typing        int
	sendErr       error
}

func (r *recordingNotifier) SendSummary(_ context.Context, title string, _ string) error {
	r.summaries = append(r.summaries, title)
	return r.sendErr
}

func (r *recordingNotifier) SendSystemNotification(
	_ context.Context,
	level bot.Level,
	title string,
	body string,
) error {
	r.notifications = append(r.notifications, notification{level: level, title: title, body: body})
	return r.sendErr
}

func (r *recordingNotifier) WithTyping(_ context.Context, fn func() error) error {
	r.typing++
	return fn()
}

func mapLoader(files map[string]string) service.Loader {
	return func(source string) (string, error) {
		text, ok := files[source]
		if !ok {
			return "", errors.New("file not found")
		}
		return text, nil
	}
}

func newService(files map[string]string, summaries map[string]string, n service.Notifier) (*service.Service, *fakeSummarizer) {
	gen := &fakeSummarizer{summaries: summaries}
	svc := service.New(mapLoader(files), gen, slog.New(slog.DiscardHandler), service.WithNotifier(n))

	return svc, gen
}

func TestSummarizeAllSucceed(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, gen := newService(
		map[string]string{"dir/a.srt": "text a", "dir/b.json": "text b"},
		map[string]string{"text a": "summary a", "text b": "summary b"},
		notifier,
	)

	result := svc.Summarize(context.Background(), []string{"dir/a.srt", "dir/b.json"}, false)

	if result.Outcome() != service.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", result.Outcome())
	}
	if result.Successes != 2 || result.Failures != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Items[0].Summary != "summary a" || result.Items[1].Summary != "summary b" {
		t.Fatalf("unexpected summaries: %+v", result.Items)
	}
	if gen.fullCalls != 2 || gen.shortCalls != 0 {
		t.Fatalf("unexpected generator calls: full=%d short=%d", gen.fullCalls, gen.shortCalls)
	}
	if len(notifier.summaries) != 2 || notifier.summaries[0] != "a" || notifier.summaries[1] != "b" {
		t.Fatalf("unexpected delivered titles: %q", notifier.summaries)
	}
	if len(notifier.notifications) != 0 {
		t.Fatalf("expected no notifications, got %+v", notifier.notifications)
	}
	if notifier.typing != 2 {
		t.Fatalf("expected typing indicator per source, got %d", notifier.typing)
	}
}

func TestSummarizePartialFailureNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newService(
		map[string]string{"a.srt": "text a", "b.srt": "text b"},
		map[string]string{"text a": "summary a"},
		notifier,
	)

	result := svc.Summarize(context.Background(), []string{"a.srt", "b.srt", "missing.srt"}, true)

	if result.Outcome() != service.OutcomePartial {
		t.Fatalf("unexpected outcome: %s", result.Outcome())
	}
	if !errors.Is(result.Items[1].Err, service.ErrNoSummary) {
		t.Fatalf("expected ErrNoSummary, got %v", result.Items[1].Err)
	}
	if result.Items[2].Err == nil {
		t.Fatalf("expected load error for missing source")
	}

	failed := result.FailedSources()
	if len(failed) != 2 || failed[0] != "b.srt" || failed[1] != "missing.srt" {
		t.Fatalf("unexpected failed sources: %q", failed)
	}

	if len(notifier.notifications) != 1 || notifier.notifications[0].level != bot.LevelWarning {
		t.Fatalf("expected one warning notification, got %+v", notifier.notifications)
	}
}

func TestSummarizeTotalFailureNotifies(t *testing.T) {
	notifier := &recordingNotifier{sendErr: errors.New("telegram is down")}
	svc, _ := newService(map[string]string{}, map[string]string{}, notifier)

	result := svc.Summarize(context.Background(), []string{"a.srt"}, false)

	if result.Outcome() != service.OutcomeFailure {
		t.Fatalf("unexpected outcome: %s", result.Outcome())
	}
	if len(notifier.notifications) != 1 || notifier.notifications[0].level != bot.LevelError {
		t.Fatalf("expected one error notification, got %+v", notifier.notifications)
	}
}

func TestSummarizeStopsOnCancelledContext(t *testing.T) {
	svc, gen := newService(
		map[string]string{"a.srt": "text a"},
		map[string]string{"text a": "summary a"},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.Summarize(ctx, []string{"a.srt"}, false)
	if result.Failures != 1 || !errors.Is(result.Items[0].Err, context.Canceled) {
		t.Fatalf("expected cancelled item, got %+v", result.Items)
	}
	if gen.fullCalls != 0 {
		t.Fatalf("expected generator not to be called")
	}
}

func TestSummarizeEmptyBatch(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newService(nil, nil, notifier)

	result := svc.Summarize(context.Background(), nil, false)
	if result.Outcome() != service.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", result.Outcome())
	}
	if len(notifier.notifications) != 0 {
		t.Fatalf("expected no notifications")
	}
}

func TestStats(t *testing.T) {
	svc := service.New(mapLoader(nil), &fakeSummarizer{}, slog.New(slog.DiscardHandler),
		service.WithProvider("deepseek", "deepseek-chat"))

	stats := svc.Stats()
	if stats.AIService != "deepseek" || stats.Model != "deepseek-chat" || stats.Status != "ready" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
