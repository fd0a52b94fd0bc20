package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/llm"
	"go.uber.org/zap"
)

// ErrCompletionUnavailable reports a reasoning-tier request arriving while
// no completion client is configured. Tier-1 routing keeps working.
var ErrCompletionUnavailable = errors.New("completion client not configured")

type OrchestrateRequest struct {
	Query     string
	TaskType  string
	UserID    string
	SessionID string
}

// OrchestrateResult is the response envelope of one routing decision.
// AvailableAgents counts the agents the decision considered: the full
// active catalog on the reasoning tiers, or the routed assignment set on a
// tier1 bypass, which never loads the catalog.
type OrchestrateResult struct {
	Orchestration     *domain.OrchestrationPlan `json:"orchestration"`
	AvailableAgents   int                       `json:"availableAgents"`
	SpecializedAgents []domain.TaskScore        `json:"specializedAgents"`
	MemoryEnabled     bool                      `json:"memoryEnabled"`
	RoutingTier       domain.RoutingTier        `json:"routingTier"`
	RoutingTimeMs     int64                     `json:"routingTimeMs"`
}

// OrchestratorService runs the three-tier routing pipeline:
// intent classification, deterministic lookup, and only when those cannot
// terminate the request, a remote reasoning call grounded by enrichment.
type OrchestratorService struct {
	intents       *IntentService
	router        *RouterService
	enricher      *EnrichmentService
	ledger        *LedgerService
	recorder      *RecorderService
	agents        domain.AgentStore
	conversations domain.ConversationStore
	completion    domain.CompletionClient
	logger        *zap.Logger
	contextTurns  int
}

func NewOrchestratorService(
	intents *IntentService,
	router *RouterService,
	enricher *EnrichmentService,
	ledger *LedgerService,
	recorder *RecorderService,
	agents domain.AgentStore,
	conversations domain.ConversationStore,
	completion domain.CompletionClient,
	contextTurns int,
	logger *zap.Logger,
) *OrchestratorService {
	if contextTurns <= 0 {
		contextTurns = 15
	}
	return &OrchestratorService{
		intents:       intents,
		router:        router,
		enricher:      enricher,
		ledger:        ledger,
		recorder:      recorder,
		agents:        agents,
		conversations: conversations,
		completion:    completion,
		contextTurns:  contextTurns,
		logger:        logger,
	}
}

func (s *OrchestratorService) Orchestrate(ctx context.Context, req OrchestrateRequest) (*OrchestrateResult, error) {
	start := time.Now()

	intent := s.classify(req)

	// Tier 1: a confident intent over a well-worn task type skips the
	// reasoning call entirely.
	var seeds []domain.TaskScore
	if !intent.RequiresLLM && intent.Confidence >= IntentRoutingThreshold {
		routed, err := s.router.Route(ctx, intent.TaskType, defaultRouteLimit)
		if err != nil {
			return nil, err
		}
		if routed.Plan != nil {
			routed.Plan.RoutingTimeMs = time.Since(start).Milliseconds()
			s.deferTier1Writes(req, routed.Plan)
			return &OrchestrateResult{
				Orchestration:     routed.Plan,
				AvailableAgents:   len(routed.Plan.Assignments),
				SpecializedAgents: nil,
				MemoryEnabled:     false,
				RoutingTier:       domain.TierDeterministic,
				RoutingTimeMs:     routed.Plan.RoutingTimeMs,
			}, nil
		}
		seeds = routed.Seeds
	}

	return s.reason(ctx, req, intent, seeds, start)
}

func (s *OrchestratorService) classify(req OrchestrateRequest) domain.Intent {
	if req.TaskType != "" {
		// The caller pinned the task type; trust it.
		return domain.Intent{TaskType: req.TaskType, Confidence: 1, RequiresLLM: false}
	}
	return s.intents.Classify(req.Query)
}

// reason is the Tier-3 path: enrichment, prompt construction, completion
// call, tolerant parse.
func (s *OrchestratorService) reason(ctx context.Context, req OrchestrateRequest, intent domain.Intent, seeds []domain.TaskScore, start time.Time) (*OrchestrateResult, error) {
	if s.completion == nil {
		// Client init failed at startup (missing key, unknown provider).
		return nil, ErrCompletionUnavailable
	}

	tier := domain.TierReasoning
	if len(seeds) > 0 {
		tier = domain.TierSeeded
	}

	catalog, err := s.agents.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	seedIDs := make([]uuid.UUID, 0, len(seeds))
	for _, ts := range seeds {
		seedIDs = append(seedIDs, ts.AgentID)
	}

	enrichments, err := s.enricher.Enrich(ctx, req.Query, seedIDs)
	if err != nil {
		// Enrichment is grounding, not a prerequisite.
		s.logger.Warn("enrichment failed, proceeding without grounding", zap.Error(err))
		enrichments = nil
	}

	turns, err := s.conversations.RecentTurns(ctx, req.UserID, req.SessionID, s.contextTurns)
	if err != nil {
		s.logger.Warn("conversation context lookup failed, proceeding without history", zap.Error(err))
		turns = nil
	}

	prompt := buildOrchestrationPrompt(req.Query, intent, turns, enrichments, seeds, catalog)
	response, err := s.completion.Complete(ctx, []domain.Message{
		{Role: "system", Content: llm.OrchestrationSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}

	result := &OrchestrateResult{
		AvailableAgents:   len(catalog),
		SpecializedAgents: seeds,
		MemoryEnabled:     anyEnriched(enrichments),
		RoutingTier:       tier,
		RoutingTimeMs:     time.Since(start).Milliseconds(),
	}

	plan, ok := ParsePlan(response)
	if !ok {
		// No recognizable plan is a normal outcome of free-form reasoning;
		// the caller decides whether to ask a clarifying question.
		s.logger.Info("completion response contained no plan",
			zap.String("task_type", intent.TaskType),
			zap.Int("response_len", len(response)),
		)
		return result, nil
	}

	if plan.TaskType == "" {
		plan.TaskType = intent.TaskType
	}
	plan.RoutingTier = tier
	plan.LLMBypassed = false
	plan.RoutingTimeMs = result.RoutingTimeMs
	result.Orchestration = plan

	s.deferReasoningWrites(req, plan)
	return result, nil
}

func anyEnriched(enrichments []AgentEnrichment) bool {
	for _, e := range enrichments {
		if !e.Degraded {
			return true
		}
	}
	return false
}

// deferTier1Writes queues the learning side effects of a deterministic
// decision: conversation history and an interaction memory for the lead.
func (s *OrchestratorService) deferTier1Writes(req OrchestrateRequest, plan *domain.OrchestrationPlan) {
	if s.recorder == nil {
		return
	}
	s.deferConversation(req, plan.Summary)

	if len(plan.Assignments) == 0 {
		return
	}
	lead := plan.Assignments[0]
	s.recorder.Enqueue(LedgerTask{
		Name: "tier1_interaction_memory",
		Run: func(ctx context.Context) error {
			return s.ledger.RecordInteraction(ctx, lead.AgentID,
				fmt.Sprintf("Selected as lead for %s task via deterministic routing: %s", plan.TaskType, req.Query),
				map[string]any{"routing_tier": string(plan.RoutingTier), "user_id": req.UserID},
			)
		},
	})
}

// deferReasoningWrites queues skill-gained events and interaction memories
// for a reasoning-tier plan.
func (s *OrchestratorService) deferReasoningWrites(req OrchestrateRequest, plan *domain.OrchestrationPlan) {
	if s.recorder == nil {
		return
	}
	s.deferConversation(req, plan.Summary)

	for _, a := range plan.Assignments {
		assignment := a
		if assignment.Confidence >= skillGainedConfidenceBar {
			s.recorder.Enqueue(LedgerTask{
				Name: "skill_gained_event",
				Run: func(ctx context.Context) error {
					return s.ledger.RecordSkillGained(ctx, assignment.AgentID, plan.TaskType, assignment.Confidence)
				},
			})
		}
		s.recorder.Enqueue(LedgerTask{
			Name: "tier3_interaction_memory",
			Run: func(ctx context.Context) error {
				return s.ledger.RecordInteraction(ctx, assignment.AgentID,
					fmt.Sprintf("Assigned %s role for %s task: %s", assignment.Role, plan.TaskType, req.Query),
					map[string]any{"routing_tier": string(plan.RoutingTier), "user_id": req.UserID},
				)
			},
		})
	}
}

func (s *OrchestratorService) deferConversation(req OrchestrateRequest, summary string) {
	s.recorder.Enqueue(LedgerTask{
		Name: "conversation_append",
		Run: func(ctx context.Context) error {
			if err := s.conversations.Append(ctx, req.UserID, req.SessionID, "user", req.Query); err != nil {
				return err
			}
			if summary == "" {
				return nil
			}
			return s.conversations.Append(ctx, req.UserID, req.SessionID, "assistant", summary)
		},
	})
}
