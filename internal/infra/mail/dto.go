package mail

import "time"

// NotificationFailureAlert é o conteúdo do email enviado quando um
// participante não recebeu a notificação do lead.
type NotificationFailureAlert struct {
	LeadID          int64
	LeadName        string
	RotationID      int64
	ParticipantID   int64
	ParticipantName string
	Reason          string
	OccurredAt      time.Time
}

type AlertSender struct {
	From   string
	To     string
	dialer dialer
}
