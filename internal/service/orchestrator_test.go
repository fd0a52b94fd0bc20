package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/embedding"
	"github.com/relayhq/dispatch/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orchestratorFixture struct {
	svc           *OrchestratorService
	agents        *mockAgentStore
	scores        *mockTaskScoreStore
	memories      *mockMemoryStore
	conversations *mockConversationStore
	completion    *llm.MockClient
	recorder      *RecorderService
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	logger := zap.NewNop()
	agents := newMockAgentStore()
	scores := newMockTaskScoreStore()
	memories := newMockMemoryStore()
	conversations := &mockConversationStore{}
	completion := llm.NewMockClient()
	embedder := embedding.NewMockClient()

	ledger := NewLedgerService(&mockPerformanceStore{}, memories, scores, agents, newMockRelationshipStore(), &mockEventStore{}, embedder, logger)
	recorder := NewRecorderService(logger)

	svc := NewOrchestratorService(
		NewIntentService(),
		NewRouterService(scores, 0.7, logger),
		NewEnrichmentService(agents, memories, scores, embedder, logger),
		ledger,
		recorder,
		agents,
		conversations,
		completion,
		15,
		logger,
	)
	return &orchestratorFixture{
		svc:           svc,
		agents:        agents,
		scores:        scores,
		memories:      memories,
		conversations: conversations,
		completion:    completion,
		recorder:      recorder,
	}
}

// drain runs the recorder long enough to flush every deferred write.
func (f *orchestratorFixture) drain() {
	f.recorder.Start()
	f.recorder.Stop()
}

func TestOrchestrateTier1Bypass(t *testing.T) {
	f := newOrchestratorFixture(t)
	specialist := f.agents.add(&domain.Agent{Name: "scheduler"})
	f.scores.ranked["event_scheduling"] = []domain.TaskScore{
		{AgentID: specialist.ID, TaskType: "event_scheduling", SpecializationScore: 0.85, SuccessCount: 20},
	}

	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "schedule a meeting with the design team",
		UserID: "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Orchestration)

	assert.Equal(t, domain.TierDeterministic, res.RoutingTier)
	assert.True(t, res.Orchestration.LLMBypassed)
	assert.False(t, res.MemoryEnabled)
	assert.Equal(t, 1, res.AvailableAgents)
	assert.Empty(t, f.completion.CompleteCalls, "tier1 must never call the completion client")

	f.drain()
	// Conversation history plus an interaction memory for the lead.
	assert.Len(t, f.conversations.appended, 2)
	require.Len(t, f.memories.created, 1)
	assert.Equal(t, domain.MemoryTypeInteraction, f.memories.created[0].Type)
	assert.Equal(t, specialist.ID, f.memories.created[0].AgentID)
}

func TestOrchestrateNoScoresFallsToTier3(t *testing.T) {
	f := newOrchestratorFixture(t)
	agent := f.agents.add(&domain.Agent{Name: "generalist"})
	f.completion.CompleteResponse = fmt.Sprintf(
		`{"assignments":[{"agent_id":"%s","role":"lead","confidence":0.85}],"summary":"delegate to generalist"}`, agent.ID)

	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "schedule a meeting",
		UserID: "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Orchestration)

	assert.Equal(t, domain.TierReasoning, res.RoutingTier)
	assert.False(t, res.Orchestration.LLMBypassed)
	assert.Equal(t, 1, res.AvailableAgents)
	assert.Len(t, f.completion.CompleteCalls, 1)
	// Intent was confident, so the plan inherits the classified task type.
	assert.Equal(t, "event_scheduling", res.Orchestration.TaskType)
}

func TestOrchestrateSeededReasoningIsTier2(t *testing.T) {
	f := newOrchestratorFixture(t)
	agent := f.agents.add(&domain.Agent{Name: "junior"})
	f.scores.ranked["event_scheduling"] = []domain.TaskScore{
		{AgentID: agent.ID, TaskType: "event_scheduling", SpecializationScore: 0.5},
	}
	f.completion.CompleteResponse = fmt.Sprintf(
		`{"assignments":[{"agent_id":"%s","role":"lead","confidence":0.7}],"summary":"assign junior with oversight"}`, agent.ID)

	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "schedule a meeting",
		UserID: "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Orchestration)

	assert.Equal(t, domain.TierSeeded, res.RoutingTier)
	require.Len(t, res.SpecializedAgents, 1)
	assert.Equal(t, agent.ID, res.SpecializedAgents[0].AgentID)
	assert.Len(t, f.completion.CompleteCalls, 1)
}

func TestOrchestrateUnparseableCompletion(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.agents.add(&domain.Agent{Name: "generalist"})
	f.completion.CompleteResponse = "I'm not sure which agent fits; could you clarify the request?"

	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "xyzzy blorp",
		UserID: "u1",
	})
	require.NoError(t, err, "an unparseable completion is not a request failure")

	assert.Nil(t, res.Orchestration)
	assert.Equal(t, domain.TierReasoning, res.RoutingTier)
	assert.Equal(t, 1, res.AvailableAgents)

	f.drain()
	assert.Empty(t, f.conversations.appended, "no plan means no deferred writes")
}

func TestOrchestrateCompletionErrorPropagates(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.agents.add(&domain.Agent{Name: "generalist"})
	f.completion.CompleteErr = &llm.StatusError{StatusCode: 429, Body: "rate limited"}

	_, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "xyzzy blorp",
		UserID: "u1",
	})
	require.Error(t, err)
	assert.Equal(t, 429, llm.UpstreamStatus(err))
}

func TestOrchestratePinnedTaskTypeSkipsClassifier(t *testing.T) {
	f := newOrchestratorFixture(t)
	specialist := f.agents.add(&domain.Agent{Name: "analyst"})
	f.scores.ranked["finance_report"] = []domain.TaskScore{
		{AgentID: specialist.ID, TaskType: "finance_report", SpecializationScore: 0.92, SuccessCount: 30},
	}

	// The query alone would never classify as finance_report.
	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:    "xyzzy blorp",
		TaskType: "finance_report",
		UserID:   "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Orchestration)

	assert.Equal(t, domain.TierDeterministic, res.RoutingTier)
	assert.False(t, res.Orchestration.Assignments[0].RequiresApproval)
	assert.Empty(t, f.completion.CompleteCalls)
}

func TestOrchestrateWithoutCompletionClient(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.agents.add(&domain.Agent{Name: "generalist"})
	// NewApp tolerates a failed client init and wires a nil client through.
	f.svc.completion = nil

	_, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "xyzzy blorp",
		UserID: "u1",
	})
	require.ErrorIs(t, err, ErrCompletionUnavailable)
}

func TestOrchestrateTier1WorksWithoutCompletionClient(t *testing.T) {
	f := newOrchestratorFixture(t)
	specialist := f.agents.add(&domain.Agent{Name: "scheduler"})
	f.scores.ranked["event_scheduling"] = []domain.TaskScore{
		{AgentID: specialist.ID, TaskType: "event_scheduling", SpecializationScore: 0.85, SuccessCount: 20},
	}
	f.svc.completion = nil

	res, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "schedule a meeting with the design team",
		UserID: "u1",
	})
	require.NoError(t, err, "the deterministic tier must not depend on the completion client")
	require.NotNil(t, res.Orchestration)
	assert.Equal(t, domain.TierDeterministic, res.RoutingTier)
}

func TestOrchestrateListAgentsFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.agents.listErr = errors.New("connection refused")

	_, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "xyzzy blorp",
		UserID: "u1",
	})
	require.Error(t, err)
}

func TestOrchestrateDefersSkillGainedEvents(t *testing.T) {
	f := newOrchestratorFixture(t)
	agent := f.agents.add(&domain.Agent{Name: "generalist"})
	events := &mockEventStore{}
	f.svc.ledger.events = events
	f.completion.CompleteResponse = fmt.Sprintf(
		`{"assignments":[{"agent_id":"%s","role":"lead","confidence":0.9}],"summary":"confident pick"}`, agent.ID)

	_, err := f.svc.Orchestrate(context.Background(), OrchestrateRequest{
		Query:  "xyzzy blorp",
		UserID: "u1",
	})
	require.NoError(t, err)

	f.drain()
	require.Len(t, events.events, 1)
	assert.Equal(t, agent.ID, events.events[0].AgentID)
	assert.Equal(t, float32(0.9), events.events[0].Confidence)
	assert.NotEqual(t, uuid.Nil, events.events[0].ID)
}
