package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/service"
	"go.uber.org/zap"
)

type RelationshipHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewRelationshipHandler(ledger *service.LedgerService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{ledger: ledger, logger: logger}
}

type updateRelationshipRequest struct {
	AgentA  string `json:"agentA"`
	AgentB  string `json:"agentB"`
	Success bool   `json:"success"`
}

func (h *RelationshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agentA, err := uuid.Parse(req.AgentA)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agentA")
		return
	}
	agentB, err := uuid.Parse(req.AgentB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agentB")
		return
	}
	if agentA == agentB {
		writeError(w, http.StatusBadRequest, "agentA and agentB must differ")
		return
	}

	rel, err := h.ledger.UpdateRelationship(r.Context(), agentA, agentB, req.Success)
	if err != nil {
		h.logger.Error("failed to update relationship", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update relationship")
		return
	}

	writeJSON(w, http.StatusOK, rel)
}
