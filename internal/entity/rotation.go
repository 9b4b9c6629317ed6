package entity

import (
	"net/url"
	"strings"
	"time"
)

// Rotation é o "round robin": um pipeline de distribuição de leads.
type Rotation struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	IsLaunched      bool      `json:"is_launched"`
	CurrentPosition int       `json:"current_position"`
	TotalLeads      int64     `json:"total_leads"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StartPosition devolve o ponteiro limitado ao tamanho do roster. Ponteiro
// fora do intervalo depois de uma edição recomeça em 0.
func (r *Rotation) StartPosition(rosterLen int) int {
	if rosterLen <= 0 || r.CurrentPosition < 0 || r.CurrentPosition >= rosterLen {
		return 0
	}
	return r.CurrentPosition
}

type LeadSource struct {
	ID         int64  `json:"id"`
	RotationID int64  `json:"round_robin_id"`
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	IsActive   bool   `json:"is_active"`
}

// ExtractDomain devolve o hostname de rawURL, ou o próprio rawURL quando não
// é uma URL absoluta.
func ExtractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
