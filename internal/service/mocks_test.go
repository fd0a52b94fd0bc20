package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/store"
)

// mockAgentStore implements domain.AgentStore for testing.
type mockAgentStore struct {
	agents      map[uuid.UUID]*domain.Agent
	order       []uuid.UUID
	listErr     error
	completions []struct {
		ID      uuid.UUID
		Success bool
	}
}

func newMockAgentStore() *mockAgentStore {
	return &mockAgentStore{agents: make(map[uuid.UUID]*domain.Agent)}
}

func (m *mockAgentStore) add(a *domain.Agent) *domain.Agent {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = domain.AgentStatusActive
	}
	m.agents[a.ID] = a
	m.order = append(m.order, a.ID)
	return a
}

func (m *mockAgentStore) Create(ctx context.Context, a *domain.Agent) error {
	for _, existing := range m.agents {
		if existing.Name == a.Name {
			return store.ErrConflict
		}
	}
	m.add(a)
	return nil
}

func (m *mockAgentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (m *mockAgentStore) ListActive(ctx context.Context) ([]domain.Agent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Agent
	for _, id := range m.order {
		if m.agents[id].Status == domain.AgentStatusActive {
			out = append(out, *m.agents[id])
		}
	}
	return out, nil
}

func (m *mockAgentStore) TopBySuccessRate(ctx context.Context, limit int) ([]domain.Agent, error) {
	all, err := m.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].SuccessRate > all[j].SuccessRate })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockAgentStore) RecordCompletion(ctx context.Context, id uuid.UUID, success bool) error {
	a, ok := m.agents[id]
	if !ok {
		return store.ErrNotFound
	}
	outcome := float32(0)
	if success {
		outcome = 1
	}
	n := float32(a.TotalTasksCompleted)
	a.SuccessRate = domain.Clamp01((a.SuccessRate*n + outcome) / (n + 1))
	a.TotalTasksCompleted++
	m.completions = append(m.completions, struct {
		ID      uuid.UUID
		Success bool
	}{id, success})
	return nil
}

// mockTaskScoreStore implements domain.TaskScoreStore for testing.
type mockTaskScoreStore struct {
	ranked  map[string][]domain.TaskScore
	byAgent map[uuid.UUID][]domain.TaskScore
	rankErr error
	topErr  error
	upserts []struct {
		AgentID    uuid.UUID
		TaskType   string
		Success    bool
		Confidence float32
	}
}

func newMockTaskScoreStore() *mockTaskScoreStore {
	return &mockTaskScoreStore{
		ranked:  make(map[string][]domain.TaskScore),
		byAgent: make(map[uuid.UUID][]domain.TaskScore),
	}
}

func (m *mockTaskScoreStore) RankByTaskType(ctx context.Context, taskType string, limit int) ([]domain.TaskScore, error) {
	if m.rankErr != nil {
		return nil, m.rankErr
	}
	scores := m.ranked[taskType]
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

func (m *mockTaskScoreStore) TopByAgent(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.TaskScore, error) {
	if m.topErr != nil {
		return nil, m.topErr
	}
	scores := m.byAgent[agentID]
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

func (m *mockTaskScoreStore) Upsert(ctx context.Context, agentID uuid.UUID, taskType string, success bool, confidence float32) (*domain.TaskScore, error) {
	m.upserts = append(m.upserts, struct {
		AgentID    uuid.UUID
		TaskType   string
		Success    bool
		Confidence float32
	}{agentID, taskType, success, confidence})
	return &domain.TaskScore{AgentID: agentID, TaskType: taskType}, nil
}

// mockMemoryStore implements domain.MemoryStore for testing.
type mockMemoryStore struct {
	created     []*domain.Memory
	createErr   error
	relevant    map[uuid.UUID][]domain.MemoryWithScore
	relevantErr map[uuid.UUID]error
	recent      map[uuid.UUID][]domain.Memory
	recentErr   error
	decayed     int64
	pruned      int64
	decayErr    error
}

func newMockMemoryStore() *mockMemoryStore {
	return &mockMemoryStore{
		relevant:    make(map[uuid.UUID][]domain.MemoryWithScore),
		relevantErr: make(map[uuid.UUID]error),
		recent:      make(map[uuid.UUID][]domain.Memory),
	}
}

func (m *mockMemoryStore) Create(ctx context.Context, mem *domain.Memory) error {
	if m.createErr != nil {
		return m.createErr
	}
	mem.ID = uuid.New()
	m.created = append(m.created, mem)
	return nil
}

func (m *mockMemoryStore) Relevant(ctx context.Context, agentID uuid.UUID, embedding []float32, limit int) ([]domain.MemoryWithScore, error) {
	if err := m.relevantErr[agentID]; err != nil {
		return nil, err
	}
	return m.relevant[agentID], nil
}

func (m *mockMemoryStore) Recent(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Memory, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return m.recent[agentID], nil
}

func (m *mockMemoryStore) DecayImportance(ctx context.Context, olderThanDays int, factor float32) (int64, error) {
	if m.decayErr != nil {
		return 0, m.decayErr
	}
	m.decayed++
	return m.decayed, nil
}

func (m *mockMemoryStore) DeleteBelowImportance(ctx context.Context, floor float32) (int64, error) {
	if m.decayErr != nil {
		return 0, m.decayErr
	}
	m.pruned++
	return m.pruned, nil
}

// mockRelationshipStore implements domain.RelationshipStore for testing.
type mockRelationshipStore struct {
	rows   map[string]*domain.Relationship
	getErr error
}

func newMockRelationshipStore() *mockRelationshipStore {
	return &mockRelationshipStore{rows: make(map[string]*domain.Relationship)}
}

func pairKey(a, b uuid.UUID) string {
	return fmt.Sprintf("%s|%s", a, b)
}

func (m *mockRelationshipStore) Get(ctx context.Context, agentA, agentB uuid.UUID) (*domain.Relationship, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.rows[pairKey(agentA, agentB)]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *mockRelationshipStore) Upsert(ctx context.Context, r *domain.Relationship) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	clone := *r
	m.rows[pairKey(r.AgentA, r.AgentB)] = &clone
	return nil
}

// mockPerformanceStore implements domain.PerformanceStore for testing.
type mockPerformanceStore struct {
	records   []*domain.PerformanceRecord
	createErr error
}

func (m *mockPerformanceStore) Create(ctx context.Context, r *domain.PerformanceRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	r.ID = uuid.New()
	m.records = append(m.records, r)
	return nil
}

// mockEventStore implements domain.LearningEventStore for testing.
type mockEventStore struct {
	events []*domain.LearningEvent
}

func (m *mockEventStore) Create(ctx context.Context, e *domain.LearningEvent) error {
	e.ID = uuid.New()
	m.events = append(m.events, e)
	return nil
}

// mockConversationStore implements domain.ConversationStore for testing.
type mockConversationStore struct {
	turns     []domain.ContextTurn
	appended  []domain.ContextTurn
	recentErr error
}

func (m *mockConversationStore) Append(ctx context.Context, userID, sessionID, role, content string) error {
	m.appended = append(m.appended, domain.ContextTurn{Role: role, Content: content})
	return nil
}

func (m *mockConversationStore) RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]domain.ContextTurn, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if len(m.turns) > limit {
		return m.turns[len(m.turns)-limit:], nil
	}
	return m.turns, nil
}
