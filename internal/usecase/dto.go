package usecase

import "github.com/xavierca1/ligue-leads/internal/entity"

type DistributeByIDInput struct {
	RotationID int64  `json:"-"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	SourceURL  string `json:"source_url"`
}

// DistributeBySourceInput é o payload dos formulários PHP.
type DistributeBySourceInput struct {
	Name           string                   `json:"name"`
	Email          string                   `json:"email"`
	MobileNumber   string                   `json:"mobile_number"`
	SourceURL      string                   `json:"source_url"`
	AdditionalData []entity.AdditionalField `json:"additional_data"`
}

// RequestMeta são os dados do chamador gravados no evento webhook_received.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// LeadPayload é o que as duas portas de entrada passam para Distribute.
type LeadPayload struct {
	Name           string
	Email          string
	Phone          string
	SourceURL      string
	AdditionalData []entity.AdditionalField
	RequestID      string
}

type NotificationResult struct {
	Success        bool   `json:"success"`
	Queued         bool   `json:"queued,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
	Reason         string `json:"reason,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms,omitempty"`
}

type DistributionOutput struct {
	LeadID       int64              `json:"lead_id"`
	RotationID   int64              `json:"round_robin_id"`
	RotationName string             `json:"round_robin"`
	SlotID       int64              `json:"participant_id"`
	AssignedTo   string             `json:"assigned_to"`
	Position     int                `json:"position"`
	NextPosition int                `json:"next_position"`
	Status       entity.LeadStatus  `json:"status"`
	StatusReason string             `json:"status_reason,omitempty"`
	Notification NotificationResult `json:"notification"`
}

type MarkJunkOutput struct {
	LeadID       int64             `json:"lead_id"`
	RulesCreated []entity.JunkRule `json:"junk_rules_created"`
}
