package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"subsum/internal/llm"
)

const (
	// MinSubtitleLength is the floor, in characters after trimming, below
	// which no request is made.
	MinSubtitleLength = 50

	MaxFullSubtitleLength  = 30000
	MaxShortSubtitleLength = 5000

	TruncationMarker = "...\n[subtitle truncated due to length limit]"

	fullTemperature  = 0.7
	fullMaxTokens    = 3000
	shortTemperature = 0.5
	shortMaxTokens   = 300
)

// Summarizer turns subtitle text into Markdown summaries. A false second
// return value means no summary is available.
type Summarizer interface {
	FullSummary(ctx context.Context, subtitle string) (string, bool)
	ShortSummary(ctx context.Context, subtitle string) (string, bool)
}

// Generator is the Summarizer backed by a single llm.Completer. It holds no
// per-call state and is safe for concurrent use.
type Generator struct {
	completer llm.Completer
	full      compiledPrompt
	short     compiledPrompt
	log       *slog.Logger
}

type summaryKind struct {
	name        string
	prompt      compiledPrompt
	temperature float64
	maxTokens   int64
	prepare     func(ctx context.Context, subtitle string) string
}

func New(completer llm.Completer, prompts Prompts, log *slog.Logger) (*Generator, error) {
	if completer == nil {
		return nil, errors.New("completer is nil")
	}

	full, err := prompts.Full.compile("full")
	if err != nil {
		return nil, fmt.Errorf("compile prompt: %w", err)
	}

	short, err := prompts.Short.compile("short")
	if err != nil {
		return nil, fmt.Errorf("compile prompt: %w", err)
	}

	return &Generator{
		completer: completer,
		full:      full,
		short:     short,
		log:       log,
	}, nil
}

// FullSummary produces the structured Markdown summary. Subtitles longer than
// MaxFullSubtitleLength are cut and suffixed with TruncationMarker.
func (g *Generator) FullSummary(ctx context.Context, subtitle string) (string, bool) {
	return g.generate(ctx, summaryKind{
		name:        "full",
		prompt:      g.full,
		temperature: fullTemperature,
		maxTokens:   fullMaxTokens,
		prepare:     g.truncateFull,
	}, subtitle)
}

// ShortSummary produces a single-paragraph preview from at most the first
// MaxShortSubtitleLength characters.
func (g *Generator) ShortSummary(ctx context.Context, subtitle string) (string, bool) {
	return g.generate(ctx, summaryKind{
		name:        "short",
		prompt:      g.short,
		temperature: shortTemperature,
		maxTokens:   shortMaxTokens,
		prepare: func(_ context.Context, s string) string {
			head, _ := truncate(s, MaxShortSubtitleLength)
			return head
		},
	}, subtitle)
}

func (g *Generator) generate(
	ctx context.Context,
	kind summaryKind,
	subtitle string,
) (summary string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.log.ErrorContext(ctx, "Summary generation panicked",
				"kind", kind.name,
				"panic", r,
				"stack", string(debug.Stack()))

			summary, ok = "", false
		}
	}()

	trimmedLength := utf8.RuneCountInString(strings.TrimSpace(subtitle))
	if trimmedLength < MinSubtitleLength {
		g.log.ErrorContext(ctx, "Subtitle is too short to summarize",
			"kind", kind.name,
			"trimmedLength", trimmedLength,
			"minLength", MinSubtitleLength)

		return "", false
	}

	g.log.InfoContext(ctx, "Generating summary",
		"kind", kind.name,
		"subtitleLength", utf8.RuneCountInString(subtitle))

	userPrompt, err := kind.prompt.render(kind.prepare(ctx, subtitle))
	if err != nil {
		g.log.ErrorContext(ctx, "Failed to render prompt",
			"error", err,
			"kind", kind.name)

		return "", false
	}

	summary, err = g.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: kind.prompt.system},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Temperature: kind.temperature,
		MaxTokens:   kind.maxTokens,
	})
	if err != nil {
		g.log.ErrorContext(ctx, "Failed to generate summary",
			"error", err,
			"kind", kind.name,
			"promptLength", utf8.RuneCountInString(userPrompt))

		return "", false
	}

	if summary == "" {
		g.log.ErrorContext(ctx, "Summary is empty",
			"kind", kind.name)

		return "", false
	}

	g.log.InfoContext(ctx, "Summary is generated",
		"kind", kind.name,
		"summaryLength", utf8.RuneCountInString(summary))

	return summary, true
}

func (g *Generator) truncateFull(ctx context.Context, subtitle string) string {
	head, cut := truncate(subtitle, MaxFullSubtitleLength)
	if !cut {
		return subtitle
	}

	g.log.WarnContext(ctx, "Subtitle is too long and will be truncated",
		"subtitleLength", utf8.RuneCountInString(subtitle),
		"maxLength", MaxFullSubtitleLength)

	return head + TruncationMarker
}

// truncate returns the first limit characters of s and whether anything was
// dropped.
func truncate(s string, limit int) (string, bool) {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}

	return s, false
}
