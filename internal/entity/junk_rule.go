package entity

import (
	"strings"
	"time"
)

type JunkRuleType string

const (
	JunkRuleEmail JunkRuleType = "email"
	JunkRulePhone JunkRuleType = "phone"
)

func (t JunkRuleType) Valid() bool {
	return t == JunkRuleEmail || t == JunkRulePhone
}

// JunkRule marca como lixo qualquer lead futuro com o mesmo contato.
type JunkRule struct {
	ID        int64        `json:"id"`
	Type      JunkRuleType `json:"type"`
	Value     string       `json:"value"`
	Reason    string       `json:"reason,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// NormalizeJunkValue prepara o valor para comparação: email sem espaços e em
// minúsculas, telefone só sem espaços.
func NormalizeJunkValue(t JunkRuleType, value string) string {
	value = strings.TrimSpace(value)
	if t == JunkRuleEmail {
		return strings.ToLower(value)
	}
	return value
}
