package mail

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func testAlert() NotificationFailureAlert {
	return NotificationFailureAlert{
		LeadID:          42,
		LeadName:        "Jane Tan",
		RotationID:      7,
		ParticipantID:   3,
		ParticipantName: "Alice",
		Reason:          "HTTP 404: Unknown Webhook",
		OccurredAt:      time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestAlertSender_SendNotificationFailure(t *testing.T) {
	d := &fakeDialer{}
	s := &AlertSender{From: "alerts@example.com", To: "ops@example.com", dialer: d}

	require.NoError(t, s.SendNotificationFailure(testAlert()))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"alerts@example.com"}, m.GetHeader("From"))
	assert.Contains(t, m.GetHeader("Subject")[0], "Lead #42")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Unknown Webhook")
	assert.Contains(t, buf.String(), "2026-03-01 10:30:00 UTC")
}

func TestAlertSender_DialFailure(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := &AlertSender{From: "a@example.com", To: "b@example.com", dialer: d}

	err := s.SendNotificationFailure(testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "erro ao enviar email SMTP")
}
