package generator

import (
	"context"
	"sync"
)

// FakeClient plays back scripted responses for offline use and tests. When
// the script runs out it repeats the last entry.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int

	// Prompts records every prompt received, for assertions.
	Prompts []string
}

func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{responses: responses}
}

// FailWith queues an error for the next call before any scripted responses
// resume.
func (f *FakeClient) FailWith(errs ...error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, errs...)
	return f
}

func (f *FakeClient) Name() string { return "FakeGenerator" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	if len(f.responses) == 0 {
		return "", ErrEmptyResponse
	}
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	return f.responses[idx], nil
}

// CallCount returns how many Generate calls were made, errored ones
// included.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}
