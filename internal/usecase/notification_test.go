package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func newDispatcher(sender *fakeSender, alerter FailureAlerter) (*NotificationDispatcher, *memAudit) {
	audit := &memAudit{}
	log := quietLogger()
	return NewNotificationDispatcher(sender, NewAuditLogger(audit, log), alerter, log), audit
}

var (
	testSlot = entity.Slot{ID: 7, RotationID: 1, Name: "Ana", DiscordWebhook: "https://discord.test/ana"}
	testLead = entity.Lead{ID: 3, RotationID: 1, SlotID: 7, Name: "Lead", Email: "l@x.io", Phone: "+6591234567"}
)

func TestNotify_Success(t *testing.T) {
	sender := &fakeSender{}
	d, audit := newDispatcher(sender, nil)

	res := d.Notify(context.Background(), testSlot, testLead)
	assert.True(t, res.Success)
	assert.Len(t, audit.ofType(entity.EventDiscordAttempt), 1)

	ok := audit.ofType(entity.EventDiscordSuccess)
	require.Len(t, ok, 1)
	assert.NotNil(t, ok[0].ResponseTimeMs)
}

func TestNotify_NoWebhook(t *testing.T) {
	sender := &fakeSender{}
	d, audit := newDispatcher(sender, nil)

	slot := testSlot
	slot.DiscordWebhook = ""
	res := d.Notify(context.Background(), slot, testLead)

	assert.False(t, res.Success)
	assert.Equal(t, "No webhook configured", res.Reason)
	assert.Equal(t, 0, sender.count())

	failures := audit.ofType(entity.EventDiscordFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, entity.AuditWarning, failures[0].Status)
}

func TestNotify_FailureSendsAlert(t *testing.T) {
	sender := &fakeSender{err: errors.New("HTTP 404: Unknown Webhook")}
	alerter := &fakeAlerter{sent: make(chan mail.NotificationFailureAlert, 1)}
	d, audit := newDispatcher(sender, alerter)

	res := d.Notify(context.Background(), testSlot, testLead)
	assert.False(t, res.Success)
	assert.Equal(t, "HTTP 404: Unknown Webhook", res.Reason)

	failures := audit.ofType(entity.EventDiscordFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, entity.AuditFailure, failures[0].Status)
	assert.Equal(t, "HTTP 404: Unknown Webhook", failures[0].ErrorDetails)

	select {
	case alert := <-alerter.sent:
		assert.Equal(t, int64(3), alert.LeadID)
		assert.Equal(t, "Ana", alert.ParticipantName)
	case <-time.After(time.Second):
		t.Fatal("alert not sent")
	}
}

type failingSlots struct{ err error }

func (f failingSlots) FindByID(context.Context, int64, int64) (*entity.Slot, error) {
	return nil, f.err
}

func TestNotifyJob(t *testing.T) {
	store := newMemStore()
	store.addRotation(1, "Ana")
	job := queue.NotificationJob{
		MessageID:  "m-1",
		LeadID:     3,
		RotationID: 1,
		SlotID:     101,
		SlotName:   "Ana",
		LeadName:   "Lead",
	}

	sender := &fakeSender{}
	d, _ := newDispatcher(sender, nil)
	d.WithSlots(memSlots{store})
	assert.NoError(t, d.NotifyJob(context.Background(), job))
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "https://discord.test/Ana", sender.urls[0])

	d, _ = newDispatcher(&fakeSender{err: errors.New("timeout")}, nil)
	d.WithSlots(memSlots{store})
	err := d.NotifyJob(context.Background(), job)
	assert.ErrorIs(t, err, ErrNotificationFailed)

	// sem webhook não adianta reenviar
	store.slots[1][0].DiscordWebhook = ""
	d, _ = newDispatcher(&fakeSender{}, nil)
	d.WithSlots(memSlots{store})
	assert.NoError(t, d.NotifyJob(context.Background(), job))
}

func TestNotifyJob_SlotLookup(t *testing.T) {
	job := queue.NotificationJob{MessageID: "m-2", LeadID: 3, RotationID: 1, SlotID: 999, SlotName: "Gone"}

	sender := &fakeSender{}
	d, audit := newDispatcher(sender, nil)
	d.WithSlots(memSlots{newMemStore()})
	assert.NoError(t, d.NotifyJob(context.Background(), job))
	assert.Equal(t, 0, sender.count())
	failures := audit.ofType(entity.EventDiscordFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, entity.AuditWarning, failures[0].Status)

	d, _ = newDispatcher(&fakeSender{}, nil)
	d.WithSlots(failingSlots{errors.New("connection refused")})
	err := d.NotifyJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	d, _ = newDispatcher(&fakeSender{}, nil)
	assert.Error(t, d.NotifyJob(context.Background(), job))
}
