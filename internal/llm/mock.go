package llm

import (
	"context"

	"github.com/relayhq/dispatch/internal/domain"
)

// MockClient is a configurable completion client for testing.
// Set the response fields to control what Complete returns.
type MockClient struct {
	CompleteResponse string
	CompleteErr      error

	// Call tracking for assertions
	CompleteCalls [][]domain.Message
}

func NewMockClient() *MockClient {
	return &MockClient{
		CompleteResponse: `{"assignments":[],"summary":"mock plan"}`,
	}
}

func (c *MockClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	c.CompleteCalls = append(c.CompleteCalls, messages)
	if c.CompleteErr != nil {
		return "", c.CompleteErr
	}
	return c.CompleteResponse, nil
}
