package entity

import "time"

type LeadStatus string

const (
	LeadStatusSent LeadStatus = "sent"
	LeadStatusJunk LeadStatus = "junk"
)

// Lead é imutável depois de criado, exceto pelo status.
type Lead struct {
	ID             int64             `json:"id"`
	RotationID     int64             `json:"round_robin_id"`
	SlotID         int64             `json:"participant_id"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	SourceURL      string            `json:"source_url,omitempty"`
	SourceDomain   string            `json:"source_domain,omitempty"`
	Status         LeadStatus        `json:"status"`
	StatusReason   string            `json:"status_reason,omitempty"`
	AdditionalData []AdditionalField `json:"additional_data,omitempty"`
	ReceivedAt     time.Time         `json:"received_at"`
}

func (l *Lead) IsJunk() bool {
	return l.Status == LeadStatusJunk
}

// AdditionalField é um par chave/valor livre enviado pelo formulário.
type AdditionalField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CompactFields descarta pares com chave ou valor vazio.
func CompactFields(fields []AdditionalField) []AdditionalField {
	out := make([]AdditionalField, 0, len(fields))
	for _, f := range fields {
		if f.Key == "" || f.Value == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
