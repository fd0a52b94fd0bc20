package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relayhq/dispatch/internal/llm"
	"github.com/relayhq/dispatch/internal/service"
	"go.uber.org/zap"
)

// Orchestrator is the routing pipeline contract the handler needs;
// substituted with a stub in tests.
type Orchestrator interface {
	Orchestrate(ctx context.Context, req service.OrchestrateRequest) (*service.OrchestrateResult, error)
}

type OrchestrateHandler struct {
	svc    Orchestrator
	logger *zap.Logger
}

func NewOrchestrateHandler(svc Orchestrator, logger *zap.Logger) *OrchestrateHandler {
	return &OrchestrateHandler{svc: svc, logger: logger}
}

type orchestrateRequest struct {
	Action    string `json:"action"`
	Query     string `json:"query"`
	TaskType  string `json:"taskType,omitempty"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId,omitempty"`
}

// Handle validates the envelope before touching any collaborator, runs the
// pipeline, and maps the error taxonomy: 400 for validation, upstream
// status pass-through for completion failures, 500 for store failures.
func (h *OrchestrateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req orchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Action != "orchestrate" {
		writeError(w, http.StatusBadRequest, "action must be \"orchestrate\"")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := h.svc.Orchestrate(r.Context(), service.OrchestrateRequest{
		Query:     req.Query,
		TaskType:  req.TaskType,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, service.ErrCompletionUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "completion service unavailable")
			return
		}
		if status := llm.UpstreamStatus(err); status != 0 {
			// The caller may want to distinguish rate limiting from outage.
			writeError(w, status, "completion service error")
			return
		}
		h.logger.Error("orchestration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "orchestration failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
