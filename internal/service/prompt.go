package service

import (
	"fmt"
	"strings"

	"github.com/relayhq/dispatch/internal/domain"
)

// buildOrchestrationPrompt assembles the single user message for the
// reasoning tier: conversation window, enrichment, seed rankings, and the
// full agent catalog with aggregate stats.
func buildOrchestrationPrompt(
	query string,
	intent domain.Intent,
	turns []domain.ContextTurn,
	enrichments []AgentEnrichment,
	seeds []domain.TaskScore,
	catalog []domain.Agent,
) string {
	var sb strings.Builder

	sb.WriteString("## Task request\n")
	sb.WriteString(query)
	sb.WriteString("\n")
	if intent.TaskType != "" {
		fmt.Fprintf(&sb, "Detected task type: %s (domain %s, confidence %.2f)\n",
			intent.TaskType, intent.Domain, intent.Confidence)
	}

	if len(turns) > 0 {
		sb.WriteString("\n## Recent conversation\n")
		for _, t := range turns {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
		}
	}

	if len(seeds) > 0 {
		sb.WriteString("\n## Pre-ranked specialists\n")
		sb.WriteString("These agents already rank highest on historical specialization for this task type. Prefer them unless the context below argues otherwise.\n")
		for i, ts := range seeds {
			fmt.Fprintf(&sb, "%d. agent %s — specialization %.2f, %d successes, avg confidence %.2f\n",
				i+1, ts.AgentID, ts.SpecializationScore, ts.SuccessCount, ts.AvgConfidence)
		}
	}

	if len(enrichments) > 0 {
		sb.WriteString("\n## Candidate context\n")
		for _, e := range enrichments {
			fmt.Fprintf(&sb, "### %s (%s, sector %s)\n", e.Agent.Name, e.Agent.ID, e.Agent.Sector)
			if e.Degraded {
				sb.WriteString("(context partially degraded; listing is un-ranked)\n")
			}
			for _, m := range e.Memories {
				fmt.Fprintf(&sb, "- [%s, relevance %.2f] %s\n", m.Type, m.Relevance, m.Content)
			}
			for _, ts := range e.Specializations {
				fmt.Fprintf(&sb, "- specializes in %s: score %.2f over %d successes\n",
					ts.TaskType, ts.SpecializationScore, ts.SuccessCount)
			}
		}
	}

	sb.WriteString("\n## Available agents\n")
	for _, a := range catalog {
		caps := strings.Join(a.Capabilities, ", ")
		if caps == "" {
			caps = "general"
		}
		fmt.Fprintf(&sb, "- %s (%s): sector %s, level %s, %d tasks, success rate %.2f, learning velocity %.2f, capabilities: %s\n",
			a.Name, a.ID, a.Sector, a.SpecializationLevel, a.TotalTasksCompleted, a.SuccessRate, a.LearningVelocity, caps)
	}

	return sb.String()
}
