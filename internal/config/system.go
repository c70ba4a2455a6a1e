package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	systemFetchTimeout = 10 * time.Second
	systemMaxBytes     = 2 << 20
	systemErrBodyBytes = 8 << 10
)

// LoadSystemPrompt resolves the system setting. The value is used as is
// unless it is an http(s) URL, which is fetched, or a file:// path, which is
// read. Markdown files lose their YAML front matter.
func LoadSystemPrompt(ctx context.Context, system string) (string, error) {
	switch {
	case strings.HasPrefix(system, "http://"), strings.HasPrefix(system, "https://"):
		return fetchSystemPrompt(ctx, system)
	case strings.HasPrefix(system, "file://"):
		return readSystemPrompt(strings.TrimPrefix(system, "file://"))
	default:
		return system, nil
	}
}

func fetchSystemPrompt(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, systemFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch system prompt: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch system prompt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, systemErrBodyBytes))
		return "", fmt.Errorf("fetch system prompt: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, systemMaxBytes))
	if err != nil {
		return "", fmt.Errorf("fetch system prompt: %w", err)
	}
	if len(body) >= systemMaxBytes {
		return "", fmt.Errorf("fetch system prompt: larger than %d bytes", systemMaxBytes)
	}
	return string(body), nil
}

func readSystemPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return string(data), nil
	}
	return StripFrontMatter(string(data))
}

// StripFrontMatter drops a leading "---" delimited YAML block. The block
// must parse as YAML.
func StripFrontMatter(doc string) (string, error) {
	first, rest, ok := strings.Cut(doc, "\n")
	if !ok || strings.TrimSpace(first) != "---" {
		return doc, nil
	}

	var meta []string
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimSpace(line) == "---" {
			var parsed map[string]any
			if err := yaml.Unmarshal([]byte(strings.Join(meta, "\n")), &parsed); err != nil {
				return "", fmt.Errorf("front matter: %w", err)
			}
			return strings.TrimLeft(next, "\r\n"), nil
		}
		if !more {
			return "", fmt.Errorf("front matter: missing closing ---")
		}
		meta = append(meta, line)
		rest = next
	}
}
