package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/service"
)

type AgentHandler struct {
	svc *service.AgentService
}

func NewAgentHandler(svc *service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type createAgentRequest struct {
	Name             string   `json:"name"`
	Sector           string   `json:"sector"`
	Capabilities     []string `json:"capabilities"`
	LearningVelocity float32  `json:"learning_velocity"`
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Sector == "" {
		writeError(w, http.StatusBadRequest, "sector is required")
		return
	}

	agent := &domain.Agent{
		Name:             req.Name,
		Sector:           req.Sector,
		Capabilities:     req.Capabilities,
		LearningVelocity: req.LearningVelocity,
	}

	if err := h.svc.Create(r.Context(), agent); err != nil {
		if errors.Is(err, service.ErrAgentConflict) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create agent")
		return
	}

	writeJSON(w, http.StatusCreated, agent)
}

func (h *AgentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get agent")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) Specializations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	scores, err := h.svc.Specializations(r.Context(), id, 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list specializations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"specializations": scores})
}
