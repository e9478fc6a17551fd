package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const maxPreviewBytes = 4 << 20

// LinkPreviewer 抓取链接页面，用 go-readability 提取摘要
type LinkPreviewer struct {
	client *http.Client
}

func NewLinkPreviewer(timeout time.Duration) *LinkPreviewer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LinkPreviewer{client: &http.Client{Timeout: timeout}}
}

// Excerpt returns the readability excerpt of pageURL, falling back to the
// first part of the extracted text.
func (p *LinkPreviewer) Excerpt(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; conceptblog-preview/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPreviewBytes), u)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = strings.Join(strings.Fields(article.TextContent), " ")
		if r := []rune(excerpt); len(r) > 280 {
			excerpt = string(r[:280]) + "…"
		}
	}
	return excerpt, nil
}
