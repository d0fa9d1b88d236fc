package generator

import "context"

// MockLLM is a canned LLMClient for tests and local runs without an API key.
// It records every prompt it receives.
type MockLLM struct {
	Response string
	Err      error
	Prompts  []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "<html><head><title>Mock conversation</title></head><body><p>mock output</p></body></html>", nil
}
