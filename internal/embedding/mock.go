package embedding

import (
	"context"
	"hash/fnv"
)

// MockClient produces deterministic pseudo-embeddings from the input text.
// Identical inputs always embed identically, which is enough for tests and
// local development without an API key.
type MockClient struct {
	Dim       int
	EmbedErr  error
	CallCount int
}

func NewMockClient() *MockClient {
	return &MockClient{Dim: 64}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.CallCount++
	if c.EmbedErr != nil {
		return nil, c.EmbedErr
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, c.Dim)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%2000)/1000 - 1
	}
	return vec, nil
}
