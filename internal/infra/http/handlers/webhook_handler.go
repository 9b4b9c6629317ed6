package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	leadmw "github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type LeadDistributor interface {
	ExecuteByID(ctx context.Context, input usecase.DistributeByIDInput) (*usecase.DistributionOutput, error)
	ExecuteBySource(ctx context.Context, input usecase.DistributeBySourceInput, meta usecase.RequestMeta) (*usecase.DistributionOutput, error)
}

type WebhookHandler struct {
	Distributor LeadDistributor
	log         *slog.Logger
}

func NewWebhookHandler(d LeadDistributor, log *slog.Logger) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{Distributor: d, log: log}
}

type DistributeResponse struct {
	Success         bool                       `json:"success"`
	LeadID          int64                      `json:"leadId"`
	AssignedTo      string                     `json:"assignedTo"`
	RoundRobin      string                     `json:"roundRobin"`
	Status          string                     `json:"status"`
	DiscordNotified bool                       `json:"discordNotified"`
	Notification    usecase.NotificationResult `json:"notification"`
	Message         string                     `json:"message"`
}

func newDistributeResponse(out *usecase.DistributionOutput) DistributeResponse {
	return DistributeResponse{
		Success:         true,
		LeadID:          out.LeadID,
		AssignedTo:      out.AssignedTo,
		RoundRobin:      out.RotationName,
		Status:          string(out.Status),
		DiscordNotified: out.Notification.Success && !out.Notification.Queued,
		Notification:    out.Notification,
		Message:         "Lead distributed successfully",
	}
}

// HandleByID atende POST /api/webhook/lead/{roundRobinId}.
func (h *WebhookHandler) HandleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "roundRobinId")
	if !ok {
		return
	}

	var input usecase.DistributeByIDInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.RotationID = id
	if input.SourceURL == "" {
		input.SourceURL = r.Referer()
	}

	out, err := h.Distributor.ExecuteByID(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newDistributeResponse(out))
}

// HandleBySource atende POST /api/webhook/lead-by-source (formulários PHP).
func (h *WebhookHandler) HandleBySource(w http.ResponseWriter, r *http.Request) {
	var input usecase.DistributeBySourceInput
	if !decodeJSON(w, r, &input) {
		return
	}

	meta := usecase.RequestMeta{
		IPAddress: leadmw.ClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	out, err := h.Distributor.ExecuteBySource(r.Context(), input, meta)
	if err != nil {
		writeUseCaseError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newDistributeResponse(out))
}
