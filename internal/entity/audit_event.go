package entity

import "time"

type AuditEventType string

const (
	EventWebhookReceived     AuditEventType = "webhook_received"
	EventValidationFailed    AuditEventType = "validation_failed"
	EventLeadAssigned        AuditEventType = "lead_assigned"
	EventJunkSkipped         AuditEventType = "notification_skipped"
	EventDiscordAttempt      AuditEventType = "discord_attempt"
	EventDiscordSuccess      AuditEventType = "discord_success"
	EventDiscordFailure      AuditEventType = "discord_failure"
	EventNotificationQueued  AuditEventType = "notification_queued"
	EventLeadMarkedJunk      AuditEventType = "lead_marked_junk"
	EventParticipantPaused   AuditEventType = "participant_paused"
	EventParticipantUnpaused AuditEventType = "participant_unpaused"
	EventError               AuditEventType = "error"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
	AuditInfo    AuditStatus = "info"
	AuditWarning AuditStatus = "warning"
)

// AuditEvent é uma linha append-only da trilha de auditoria (lead_logs).
type AuditEvent struct {
	ID             int64          `json:"id"`
	LeadID         *int64         `json:"lead_id,omitempty"`
	RotationID     *int64         `json:"round_robin_id,omitempty"`
	SlotID         *int64         `json:"participant_id,omitempty"`
	EventType      AuditEventType `json:"event_type"`
	Status         AuditStatus    `json:"status"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
	ErrorDetails   string         `json:"error_details,omitempty"`
	SourceURL      string         `json:"source_url,omitempty"`
	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	ResponseTimeMs *int64         `json:"response_time_ms,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	// Preenchidos pelas consultas (LEFT JOIN).
	RotationName    string `json:"round_robin_name,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	LeadName        string `json:"lead_name,omitempty"`
}

// NotificationStats agrega eventos discord_success/discord_failure.
type NotificationStats struct {
	Successful      int64    `json:"successful"`
	Failed          int64    `json:"failed"`
	Total           int64    `json:"total"`
	SuccessRate     float64  `json:"success_rate"`
	AvgResponseTime *float64 `json:"avg_response_time_ms"`
}

// Int64Ptr ajuda a preencher as referências opcionais de AuditEvent.
func Int64Ptr(v int64) *int64 {
	return &v
}
