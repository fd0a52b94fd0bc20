package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestExtractJSONObjectPlain(t *testing.T) {
	raw, ok := ExtractJSONObject(`{"summary":"ok"}`)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if raw != `{"summary":"ok"}` {
		t.Fatalf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSONObjectEmbeddedInProse(t *testing.T) {
	text := "Sure! Here is the plan you asked for:\n\n```json\n{\"summary\":\"delegate\",\"task_type\":\"general\"}\n```\n\nLet me know if you need changes."
	raw, ok := ExtractJSONObject(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if raw != `{"summary":"delegate","task_type":"general"}` {
		t.Fatalf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSONObjectBracesInStrings(t *testing.T) {
	text := `prefix {"summary":"use {curly} braces and a \" quote","n":1} suffix`
	raw, ok := ExtractJSONObject(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if raw != `{"summary":"use {curly} braces and a \" quote","n":1}` {
		t.Fatalf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSONObjectSkipsInvalidCandidate(t *testing.T) {
	// The first balanced region is not valid JSON; the scanner must keep
	// going and find the second.
	text := `{not json} then {"summary":"real"}`
	raw, ok := ExtractJSONObject(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if raw != `{"summary":"real"}` {
		t.Fatalf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	for _, text := range []string{"", "no braces here", "unbalanced { forever", "}{"} {
		if _, ok := ExtractJSONObject(text); ok {
			t.Fatalf("expected no extraction from %q", text)
		}
	}
}

func TestParsePlanDropsInvalidAgentIDs(t *testing.T) {
	good := uuid.New()
	text := fmt.Sprintf(`{
		"assignments": [
			{"agent_id": "%s", "role": "lead", "confidence": 0.9},
			{"agent_id": "not-a-uuid", "role": "support", "confidence": 0.7}
		],
		"summary": "one valid assignment",
		"task_type": "general"
	}`, good)

	plan, ok := ParsePlan(text)
	if !ok {
		t.Fatal("expected a plan")
	}
	if len(plan.Assignments) != 1 {
		t.Fatalf("invalid agent ids must be dropped, got %d assignments", len(plan.Assignments))
	}
	if plan.Assignments[0].AgentID != good {
		t.Fatalf("unexpected agent id %s", plan.Assignments[0].AgentID)
	}
}

func TestParsePlanClampsScores(t *testing.T) {
	text := fmt.Sprintf(`{"assignments":[{"agent_id":"%s","confidence":1.7,"specialization_match":-0.3}],"summary":"s"}`, uuid.New())

	plan, ok := ParsePlan(text)
	if !ok {
		t.Fatal("expected a plan")
	}
	a := plan.Assignments[0]
	if a.Confidence != 1 {
		t.Fatalf("confidence must clamp to 1, got %.2f", a.Confidence)
	}
	if a.SpecializationMatch != 0 {
		t.Fatalf("specialization_match must clamp to 0, got %.2f", a.SpecializationMatch)
	}
}

func TestParsePlanNoObject(t *testing.T) {
	if plan, ok := ParsePlan("I could not decide on an assignment."); ok || plan != nil {
		t.Fatal("prose with no object must yield (nil, false)")
	}
}
