// Package markdown prepares summary text for Telegram MarkdownV2 messages.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\_*[]()~` + "`" + `>#+-=|{}.!`

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

// EscapeV2 escapes every MarkdownV2 special character so s renders literally.
func EscapeV2(s string) string {
	charsToEscape := 0
	for i := range len(s) {
		if mdV2Lookup[s[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + charsToEscape)

	for i := range len(s) {
		c := s[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Split breaks s into chunks of at most limit characters, preferring line
// boundaries. Lines longer than limit are cut on rune boundaries.
func Split(s string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		lineSize := utf8.RuneCountInString(line)

		if size+lineSize <= limit {
			current.WriteString(line)
			size += lineSize
			continue
		}

		flush()

		for lineSize > limit {
			head, rest := splitRunes(line, limit)
			chunks = append(chunks, head)
			line = rest
			lineSize -= limit
		}

		current.WriteString(line)
		size = lineSize
	}

	flush()

	return chunks
}

func splitRunes(s string, n int) (string, string) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], s[i:]
		}
		count++
	}

	return s, ""
}
