// Package summarizer fetches reference URLs and condenses their content into
// a single summary through the completion service.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"haml_conversation_publisher/generator"
)

var (
	// ErrNoURLs is returned when there is nothing to summarize.
	ErrNoURLs = errors.New("no urls found")

	// ErrSummarizationFailed marks a failed completion call during
	// summarization.
	ErrSummarizationFailed = errors.New("summarization failed")
)

const (
	summarySystemPrompt = "You are a summarization assistant."
	summaryUserPrefix   = "Please summarize the following content: "

	// Summaries should stay literal, so sampling runs cooler and shorter
	// than generation.
	summaryTemperature = 0.7
	summaryMaxTokens   = 1000
)

// Summarizer aggregates fetched page content and summarizes it in one
// completion call.
type Summarizer struct {
	llm     generator.LLMClient
	fetcher *Fetcher
	logger  *zap.Logger
}

func New(llm generator.LLMClient, fetcher *Fetcher, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetcher == nil {
		fetcher = NewFetcher(FetchOptions{}, logger)
	}
	return &Summarizer{llm: llm, fetcher: fetcher, logger: logger}
}

// Summarize fetches every URL, concatenates the bodies with blank-line
// separators in input order, and asks the completion service for a single
// summary. Unreachable URLs are skipped; if every fetch fails the completion
// call still runs on an empty aggregate rather than short-circuiting.
func (s *Summarizer) Summarize(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoURLs
	}

	contents := s.fetcher.FetchAll(ctx, urls)
	var parts []string
	for _, c := range contents {
		if c != "" {
			parts = append(parts, c)
		}
	}
	s.logger.Info("aggregated fetched content",
		zap.Int("urls", len(urls)),
		zap.Int("fetched", len(parts)))

	prompt := generator.Prompt{
		System:      summarySystemPrompt,
		User:        summaryUserPrefix + strings.Join(parts, "\n\n"),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	}

	summary, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("summary completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	return summary, nil
}
