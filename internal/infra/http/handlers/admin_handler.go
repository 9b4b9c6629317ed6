package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type RosterManager interface {
	ListOrdered(ctx context.Context, rotationID int64) ([]entity.Slot, error)
	Reorder(ctx context.Context, rotationID int64, slotIDs []int64) error
	SetPaused(ctx context.Context, rotationID, slotID int64, paused bool, reason string) (*entity.Slot, error)
	RemoveSlot(ctx context.Context, rotationID, slotID int64) (bool, error)
	Launch(ctx context.Context, rotationID int64) (*entity.Rotation, error)
}

type JunkModerator interface {
	AddRule(ctx context.Context, t entity.JunkRuleType, value, reason string) (*entity.JunkRule, bool, error)
	MarkLeadAsJunk(ctx context.Context, leadID int64, reason string) (*usecase.MarkJunkOutput, error)
}

// AdminHandler expõe as operações de administração de rotações e junk.
type AdminHandler struct {
	Roster RosterManager
	Junk   JunkModerator
	log    *slog.Logger
}

func NewAdminHandler(roster RosterManager, junk JunkModerator, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{Roster: roster, Junk: junk, log: log}
}

func (h *AdminHandler) Launch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rot, err := h.Roster.Launch(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "roundRobin": rot})
}

func (h *AdminHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slots, err := h.Roster.ListOrdered(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": slots})
}

type togglePauseRequest struct {
	IsPaused *bool  `json:"isPaused"`
	Reason   string `json:"reason"`
}

func (h *AdminHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	rotID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slotID, ok := pathID(w, r, "participantId")
	if !ok {
		return
	}

	var req togglePauseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsPaused == nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "isPaused must be a boolean")
		return
	}

	slot, err := h.Roster.SetPaused(r.Context(), rotID, slotID, *req.IsPaused, req.Reason)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "participant": slot})
}

type reorderRequest struct {
	ParticipantIDs []int64 `json:"participantIds"`
}

func (h *AdminHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	rotID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.ParticipantIDs) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "participantIds must be a non-empty array")
		return
	}

	if err := h.Roster.Reorder(r.Context(), rotID, req.ParticipantIDs); err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AdminHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	rotID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slotID, ok := pathID(w, r, "participantId")
	if !ok {
		return
	}
	hardDeleted, err := h.Roster.RemoveSlot(r.Context(), rotID, slotID)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": hardDeleted})
}

type markJunkRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) MarkJunk(w http.ResponseWriter, r *http.Request) {
	leadID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req markJunkRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.Reason == "" {
		req.Reason = "Marked as junk by admin"
	}

	out, err := h.Junk.MarkLeadAsJunk(r.Context(), leadID, req.Reason)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"leadId":       out.LeadID,
		"rulesCreated": out.RulesCreated,
	})
}

type junkRuleRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) AddJunkRule(w http.ResponseWriter, r *http.Request) {
	var req junkRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, created, err := h.Junk.AddRule(r.Context(), entity.JunkRuleType(req.Type), req.Value, req.Reason)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"success": true, "created": created, "rule": rule})
}
