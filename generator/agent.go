package generator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrCompletionFailed marks a failed call to the completion provider. The
// provider's own error detail is kept in the chain but never shown to API
// callers.
var ErrCompletionFailed = errors.New("completion failed")

// Summarizer provides the context summary for enriched generation.
type Summarizer interface {
	Summarize(ctx context.Context, urls []string) (string, error)
}

// Agent runs the generation pipeline: extract, optionally summarize, compose,
// complete, inject. It holds no per-request state.
type Agent struct {
	llm        LLMClient
	summarizer Summarizer
	logger     *zap.Logger
}

func NewAgent(llm LLMClient, summarizer Summarizer, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, summarizer: summarizer, logger: logger}, nil
}

// Generate runs the bare pipeline: no reference extraction, no summary.
func (a *Agent) Generate(ctx context.Context, haml string) (string, error) {
	return a.complete(ctx, BuildGenerationPrompt(haml))
}

// GenerateEnriched extracts reference URLs from the document, summarizes
// their content, and generates with the summary embedded in the prompt. A
// failed summary fails the whole pipeline; no partial artifact is returned.
func (a *Agent) GenerateEnriched(ctx context.Context, haml string) (string, error) {
	if a.summarizer == nil {
		return "", errors.New("summarizer is not configured")
	}
	urls := ExtractURLs(haml)
	a.logger.Debug("extracted reference urls", zap.Int("count", len(urls)))

	summary, err := a.summarizer.Summarize(ctx, urls)
	if err != nil {
		return "", fmt.Errorf("summary unavailable: %w", err)
	}
	return a.complete(ctx, BuildEnrichedPrompt(haml, summary))
}

func (a *Agent) complete(ctx context.Context, prompt Prompt) (string, error) {
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("completion call failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	return InjectScripts(raw), nil
}
