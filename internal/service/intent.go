package service

import (
	"strings"

	"github.com/relayhq/dispatch/internal/domain"
)

// intentRule maps query keywords to a task type. Strong keywords are
// distinctive enough to route on alone; weak keywords only raise confidence
// when they co-occur with something else.
type intentRule struct {
	taskType string
	domain   string
	strong   []string
	weak     []string
}

var intentRules = []intentRule{
	{
		taskType: "communications_draft",
		domain:   "communications",
		strong:   []string{"email", "reply", "compose", "respond to"},
		weak:     []string{"draft", "message", "send", "write"},
	},
	{
		taskType: "event_scheduling",
		domain:   "calendar",
		strong:   []string{"schedule", "meeting", "appointment", "reschedule", "calendar"},
		weak:     []string{"book", "plan", "invite"},
	},
	{
		taskType: "finance_report",
		domain:   "finance",
		strong:   []string{"invoice", "expense", "budget", "reconcile", "payment"},
		weak:     []string{"report", "total", "spend"},
	},
	{
		taskType: "document_review",
		domain:   "documents",
		strong:   []string{"contract", "summarize", "proofread"},
		weak:     []string{"document", "review", "read"},
	},
	{
		taskType: "research_lookup",
		domain:   "knowledge",
		strong:   []string{"research", "look up", "compare"},
		weak:     []string{"find", "search", "what is"},
	},
}

const (
	intentBaseConfidence   = 0.5
	intentStrongWeight     = 0.2
	intentWeakWeight       = 0.1
	intentMaxConfidence    = 0.95
	IntentRoutingThreshold = 0.7
)

// IntentService classifies free text into a coarse task intent. Pure
// function of the input against the rule table; no external calls.
type IntentService struct{}

func NewIntentService() *IntentService {
	return &IntentService{}
}

// Classify scores every rule against the query and returns the best match.
// Unrecognized text yields requires_llm=true with zero confidence, forcing
// the reasoning tier.
func (s *IntentService) Classify(query string) domain.Intent {
	q := strings.ToLower(query)

	best := domain.Intent{TaskType: "general", Confidence: 0, RequiresLLM: true}
	var bestScore float32

	for _, rule := range intentRules {
		var score float32
		for _, kw := range rule.strong {
			if strings.Contains(q, kw) {
				score += intentStrongWeight
			}
		}
		for _, kw := range rule.weak {
			if strings.Contains(q, kw) {
				score += intentWeakWeight
			}
		}
		if score == 0 || score <= bestScore {
			continue
		}

		bestScore = score
		confidence := intentBaseConfidence + score
		if confidence > intentMaxConfidence {
			confidence = intentMaxConfidence
		}
		best = domain.Intent{
			TaskType:    rule.taskType,
			Domain:      rule.domain,
			Confidence:  confidence,
			RequiresLLM: confidence < IntentRoutingThreshold,
		}
	}

	return best
}
