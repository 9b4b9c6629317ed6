package entity

import "time"

// Slot é a participação de alguém em uma rotação específica.
type Slot struct {
	ID             int64     `json:"id"`
	RotationID     int64     `json:"round_robin_id"`
	ParticipantID  *int64    `json:"participant_id,omitempty"` // participante global, se houver
	Name           string    `json:"name"`
	DiscordName    string    `json:"discord_name,omitempty"`
	DiscordWebhook string    `json:"-"`
	LeadLimit      int       `json:"lead_limit"`
	LeadsReceived  int64     `json:"leads_received"`
	QueuePosition  int       `json:"queue_position"`
	IsActive       bool      `json:"is_active"`
	IsPaused       bool      `json:"is_paused"`
	PauseReason    string    `json:"pause_reason,omitempty"`
	IsExternal     bool      `json:"is_external"`
	CreatedAt      time.Time `json:"created_at"`
}

// Available indica se o participante pode receber o próximo lead.
func (s *Slot) Available() bool {
	return s.IsActive && !s.IsPaused
}

func (s *Slot) HasWebhook() bool {
	return s.DiscordWebhook != ""
}

// DisplayName é o nome mostrado como remetente da notificação.
func (s *Slot) DisplayName() string {
	if s.DiscordName != "" {
		return s.DiscordName
	}
	return s.Name
}
