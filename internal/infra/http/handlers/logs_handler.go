package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

type AuditReader interface {
	ByLead(ctx context.Context, leadID int64, limit int) ([]entity.AuditEvent, error)
	ByRotation(ctx context.Context, rotationID int64, hours, limit int) ([]entity.AuditEvent, error)
	Failures(ctx context.Context, limit int) ([]entity.AuditEvent, error)
	NotificationStats(ctx context.Context, rotationID *int64, days int) (*entity.NotificationStats, error)
}

type LogsHandler struct {
	Audit AuditReader
	log   *slog.Logger
}

func NewLogsHandler(audit AuditReader, log *slog.Logger) *LogsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LogsHandler{Audit: audit, log: log}
}

func (h *LogsHandler) ByLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "leadId")
	if !ok {
		return
	}
	logs, err := h.Audit.ByLead(r.Context(), id, queryInt(r, "limit", 100))
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *LogsHandler) ByRotation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	logs, err := h.Audit.ByRotation(r.Context(), id, queryInt(r, "hours", 0), queryInt(r, "limit", 100))
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *LogsHandler) Failures(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Audit.Failures(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// NotificationStats atende /logs/discord-stats e /logs/discord-stats/{roundRobinId}.
func (h *LogsHandler) NotificationStats(w http.ResponseWriter, r *http.Request) {
	var rotationID *int64
	if chi.URLParam(r, "roundRobinId") != "" {
		id, ok := pathID(w, r, "roundRobinId")
		if !ok {
			return
		}
		rotationID = &id
	}
	stats, err := h.Audit.NotificationStats(r.Context(), rotationID, queryInt(r, "days", 0))
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
