package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodyBytes = 2 << 20
	defaultConcurrency  = 4
)

// FetchOptions tunes the fetch stage. Zero values fall back to defaults.
type FetchOptions struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	Concurrency  int
}

// Fetcher retrieves reference URLs for summarization.
type Fetcher struct {
	client       *http.Client
	logger       *zap.Logger
	maxBodyBytes int64
	concurrency  int
}

func NewFetcher(opts FetchOptions, logger *zap.Logger) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:       &http.Client{Timeout: opts.Timeout},
		logger:       logger,
		maxBodyBytes: opts.MaxBodyBytes,
		concurrency:  opts.Concurrency,
	}
}

// FetchAll retrieves every URL with bounded concurrency. The result keeps
// input order regardless of completion order; a failed fetch leaves an empty
// slot and is logged, never fatal. Duplicate URLs are fetched independently.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []string {
	results := make([]string, len(urls))

	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			body, err := f.fetch(ctx, u)
			if err != nil {
				f.logger.Warn("fetch failed, skipping url", zap.String("url", u), zap.Error(err))
				return nil
			}
			results[i] = body
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		if text := readableText(body, rawURL); text != "" {
			return text, nil
		}
	}
	return string(body), nil
}

// readableText reduces an HTML page to its article text. Raw markup is a poor
// summarization input; pages that defeat extraction fall back to the raw body.
func readableText(body []byte, rawURL string) string {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
