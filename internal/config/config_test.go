package config

import "testing"

func TestDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ROUTING_CONFIDENCE_THRESHOLD", "")
	t.Setenv("CONTEXT_WINDOW_TURNS", "")
	t.Setenv("LLM_PROVIDER", "")

	if got := ServerPort(); got != 8080 {
		t.Fatalf("default port should be 8080, got %d", got)
	}
	if got := RoutingThreshold(); got != 0.7 {
		t.Fatalf("default threshold should be 0.7, got %v", got)
	}
	if got := ContextWindowTurns(); got != 15 {
		t.Fatalf("default context window should be 15, got %d", got)
	}
	if got := LLMProvider(); got != "openai" {
		t.Fatalf("default provider should be openai, got %q", got)
	}
}

func TestRoutingThresholdBounds(t *testing.T) {
	cases := []struct {
		raw  string
		want float32
	}{
		{"0.85", 0.85},
		{"0", 0.7},
		{"-1", 0.7},
		{"1.2", 0.7},
		{"garbage", 0.7},
	}
	for _, tc := range cases {
		t.Setenv("ROUTING_CONFIDENCE_THRESHOLD", tc.raw)
		if got := RoutingThreshold(); got != tc.want {
			t.Fatalf("RoutingThreshold with %q = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLLMAPIKeyFollowsProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")

	t.Setenv("LLM_PROVIDER", "anthropic")
	if got := LLMAPIKey(); got != "sk-anthropic" {
		t.Fatalf("expected anthropic key, got %q", got)
	}

	t.Setenv("LLM_PROVIDER", "openai")
	if got := LLMAPIKey(); got != "sk-openai" {
		t.Fatalf("expected openai key, got %q", got)
	}

	t.Setenv("LLM_PROVIDER", "mock")
	if got := LLMAPIKey(); got != "" {
		t.Fatalf("mock provider needs no key, got %q", got)
	}
}
