package service

import (
	"context"
	"fmt"

	"github.com/relayhq/dispatch/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultRouteLimit     = 5
	approvalConfidenceBar = 0.9
)

// RouteResult is the outcome of a Tier-1 attempt. Exactly one of Plan or
// Seeds is meaningful: a non-nil Plan terminates the request; otherwise
// Seeds (possibly empty) carries forward to the reasoning tier.
type RouteResult struct {
	Plan  *domain.OrchestrationPlan
	Seeds []domain.TaskScore
}

// RouterService is the deterministic Tier-1 router: a ranked specialization
// lookup with a confidence bar. Well-worn task types never pay for a remote
// reasoning call.
type RouterService struct {
	scores    domain.TaskScoreStore
	logger    *zap.Logger
	threshold float32
}

func NewRouterService(scores domain.TaskScoreStore, threshold float32, logger *zap.Logger) *RouterService {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return &RouterService{scores: scores, threshold: threshold, logger: logger}
}

func (s *RouterService) Route(ctx context.Context, taskType string, limit int) (*RouteResult, error) {
	if limit <= 0 {
		limit = defaultRouteLimit
	}

	ranked, err := s.scores.RankByTaskType(ctx, taskType, limit)
	if err != nil {
		return nil, fmt.Errorf("rank task scores: %w", err)
	}

	if len(ranked) == 0 {
		return &RouteResult{}, nil
	}

	top := ranked[0]
	if top.SpecializationScore == 0 {
		// No observed signal for this task type yet; same as having no rows.
		return &RouteResult{}, nil
	}
	if top.SpecializationScore < s.threshold || top.RequiresLLMFallback {
		// Nonzero but below the bar: pass the ranking forward so the
		// reasoning tier does not repeat the lookup.
		s.logger.Debug("tier1 below threshold, seeding reasoning tier",
			zap.String("task_type", taskType),
			zap.Float32("top_score", top.SpecializationScore),
			zap.Bool("llm_fallback", top.RequiresLLMFallback),
		)
		return &RouteResult{Seeds: ranked}, nil
	}

	assignments := make([]domain.AgentAssignment, 0, len(ranked))
	for i, ts := range ranked {
		role := "support"
		if i == 0 {
			role = "lead"
		}
		assignments = append(assignments, domain.AgentAssignment{
			AgentID:             ts.AgentID,
			Role:                role,
			Confidence:          ts.SpecializationScore,
			RequiresApproval:    ts.SpecializationScore < approvalConfidenceBar,
			Reasoning:           fmt.Sprintf("specialization score %.2f over %d completed tasks", ts.SpecializationScore, ts.SuccessCount),
			SpecializationMatch: ts.SpecializationScore,
		})
	}

	plan := &domain.OrchestrationPlan{
		Assignments: assignments,
		Summary:     fmt.Sprintf("Routed %q to proven specialist without reasoning call", taskType),
		TaskType:    taskType,
		RoutingTier: domain.TierDeterministic,
		LLMBypassed: true,
	}
	return &RouteResult{Plan: plan}, nil
}
