package generate

import "context"

// Mock is a canned-response generator for tests. It records every prompt it
// receives so tests can assert on prompt construction.
type Mock struct {
	Response string
	Err      error
	Prompts  []string
}

// Generate returns the canned response (or error) and records the prompt.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
