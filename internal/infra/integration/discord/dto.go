package discord

import "github.com/xavierca1/ligue-leads/internal/entity"

// WebhookPayload é o corpo aceito pelos webhooks do Discord.
type WebhookPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// LeadMessage é o conteúdo da notificação de um lead.
type LeadMessage struct {
	RecipientName  string
	SenderName     string
	LeadName       string
	Email          string
	Phone          string
	AdditionalData []entity.AdditionalField
}
