package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
)

// ExtractJSONObject returns the first balanced top-level JSON object found
// in free-form text, or ok=false if none exists. Braces inside string
// literals (including escaped quotes) do not count toward the balance.
func ExtractJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				// Not valid JSON after all; keep scanning.
				start = -1
			}
		}
	}
	return "", false
}

// wire shape for the reasoning tier's plan. Agent ids arrive as strings and
// may be garbage; invalid entries are dropped, not fatal.
type planWire struct {
	Assignments []struct {
		AgentID             string  `json:"agent_id"`
		Role                string  `json:"role"`
		Confidence          float32 `json:"confidence"`
		RequiresApproval    bool    `json:"requires_approval"`
		Reasoning           string  `json:"reasoning"`
		SpecializationMatch float32 `json:"specialization_match"`
	} `json:"assignments"`
	Summary  string `json:"summary"`
	TaskType string `json:"task_type"`
}

// ParsePlan extracts an orchestration plan from a free-form completion
// response. A missing or malformed plan is a normal outcome of free-form
// reasoning, so the return is (nil, false) rather than an error.
func ParsePlan(text string) (*domain.OrchestrationPlan, bool) {
	raw, ok := ExtractJSONObject(text)
	if !ok {
		return nil, false
	}

	var wire planWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, false
	}

	plan := &domain.OrchestrationPlan{
		Summary:  wire.Summary,
		TaskType: wire.TaskType,
	}
	for _, a := range wire.Assignments {
		id, err := uuid.Parse(a.AgentID)
		if err != nil {
			continue
		}
		plan.Assignments = append(plan.Assignments, domain.AgentAssignment{
			AgentID:             id,
			Role:                a.Role,
			Confidence:          domain.Clamp01(a.Confidence),
			RequiresApproval:    a.RequiresApproval,
			Reasoning:           a.Reasoning,
			SpecializationMatch: domain.Clamp01(a.SpecializationMatch),
		})
	}
	return plan, true
}
