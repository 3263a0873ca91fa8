package bot

import (
	"fmt"
	"strings"

	"subsum/internal/markdown"
)

func formatSummaryMessages(title string, summary string) []string {
	parts := markdown.Split(strings.TrimSpace(summary), summaryChunkLength)
	if len(parts) == 0 {
		parts = []string{""}
	}

	header := "📺 *" + markdown.EscapeV2(strings.TrimSpace(title)) + "*"

	messages := make([]string, 0, len(parts))
	for i, part := range parts {
		var b strings.Builder

		b.WriteString(header)
		if len(parts) > 1 {
			b.WriteString(markdown.EscapeV2(fmt.Sprintf(" (%d/%d)", i+1, len(parts))))
		}
		b.WriteString("\n\n")
		b.WriteString(markdown.EscapeV2(part))

		messages = append(messages, b.String())
	}

	return messages
}

func formatNotification(level Level, title string, body string) string {
	var b strings.Builder

	b.WriteString(levelIcon(level))
	b.WriteString(" *")
	b.WriteString(markdown.EscapeV2(strings.TrimSpace(title)))
	b.WriteString("*")

	if body = strings.TrimSpace(body); body != "" {
		b.WriteString("\n\n")
		b.WriteString(markdown.EscapeV2(body))
	}

	return b.String()
}

func levelIcon(level Level) string {
	switch level {
	case LevelWarning:
		return "⚠️"
	case LevelError:
		return "❌"
	default:
		return "ℹ️"
	}
}
