package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var alertTemplate = template.Must(template.New("alert").Parse(`Lead notification failed.

Lead:        #{{.LeadID}} {{.LeadName}}
Round robin: #{{.RotationID}}
Participant: #{{.ParticipantID}} {{.ParticipantName}}
When:        {{.OccurredAt.Format "2006-01-02 15:04:05 MST"}}

Reason:
{{.Reason}}

The lead is saved and assigned. Forward it to the participant manually.
`))

func NewAlertSender(host string, port int, user, password, from, to string) *AlertSender {
	return &AlertSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *AlertSender) SendNotificationFailure(alert NotificationFailureAlert) error {
	m, err := s.buildMessage(alert)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *AlertSender) buildMessage(alert NotificationFailureAlert) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, alert); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("⚠️ Lead #%d não notificado (%s)", alert.LeadID, alert.ParticipantName))
	m.SetBody("text/plain", body.String())
	return m, nil
}
