package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/service"
	"go.uber.org/zap"
)

// OutcomeHandler feeds observed task outcomes back into the learning
// ledger, closing the loop for future Tier-1 hits.
type OutcomeHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewOutcomeHandler(ledger *service.LedgerService, logger *zap.Logger) *OutcomeHandler {
	return &OutcomeHandler{ledger: ledger, logger: logger}
}

type recordOutcomeRequest struct {
	AgentID         string         `json:"agentId"`
	TaskType        string         `json:"taskType"`
	TaskDescription string         `json:"taskDescription"`
	Success         bool           `json:"success"`
	ExecutionMs     int64          `json:"executionMs"`
	Confidence      float32        `json:"confidence"`
	ErrorClass      *string        `json:"errorClass,omitempty"`
	Context         map[string]any `json:"context,omitempty"`
}

func (h *OutcomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agentId")
		return
	}
	if req.TaskType == "" {
		writeError(w, http.StatusBadRequest, "taskType is required")
		return
	}

	rec := &domain.PerformanceRecord{
		AgentID:         agentID,
		TaskType:        req.TaskType,
		TaskDescription: req.TaskDescription,
		Success:         req.Success,
		ExecutionMs:     req.ExecutionMs,
		Confidence:      req.Confidence,
		ErrorClass:      req.ErrorClass,
		Context:         req.Context,
	}

	if err := h.ledger.RecordPerformance(r.Context(), rec); err != nil {
		h.logger.Error("failed to record performance", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record outcome")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}
