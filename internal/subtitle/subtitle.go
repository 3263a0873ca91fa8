// Package subtitle turns subtitle files into plain transcript text.
package subtitle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	extJSON = ".json"
	extSRT  = ".srt"
	extText = ".txt"
)

var (
	reSrtTime  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
	reSrtIndex = regexp.MustCompile(`^\d+$`)
)

type bilibiliSubtitle struct {
	Body json.RawMessage `json:"body"`
}

type bilibiliLine struct {
	Content string `json:"content"`
}

// Load reads path and parses it according to its extension.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}

	text, err := Parse(path, data)
	if err != nil {
		return "", fmt.Errorf("parse subtitle file (path = %s): %w", path, err)
	}

	return text, nil
}

// Parse converts data into transcript text. name is only used for its
// extension.
func Parse(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case extJSON:
		return parseBilibili(data)
	case extSRT:
		return parseSRT(string(data)), nil
	default:
		return strings.TrimSpace(string(data)), nil
	}
}

// IsSubtitleFile reports whether path has a supported extension.
func IsSubtitleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extJSON, extSRT, extText:
		return !strings.HasPrefix(filepath.Base(path), ".")
	default:
		return false
	}
}

// parseBilibili joins the non-empty body[].content entries with spaces.
func parseBilibili(data []byte) (string, error) {
	var sub bilibiliSubtitle
	if err := json.Unmarshal(data, &sub); err != nil {
		return "", fmt.Errorf("decode JSON: %w", err)
	}

	if len(sub.Body) == 0 {
		return "", errors.New("body is missing")
	}

	var lines []bilibiliLine
	if err := json.Unmarshal(sub.Body, &lines); err != nil {
		return "", fmt.Errorf("body is not a list: %w", err)
	}

	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		if content := strings.TrimSpace(line.Content); content != "" {
			texts = append(texts, content)
		}
	}

	return strings.Join(texts, " "), nil
}

// parseSRT drops sequence numbers and timestamps and keeps the dialogue.
func parseSRT(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")

	var texts []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || reSrtIndex.MatchString(trimmed) || reSrtTime.MatchString(trimmed) {
			continue
		}
		texts = append(texts, trimmed)
	}

	return strings.Join(texts, "\n")
}
