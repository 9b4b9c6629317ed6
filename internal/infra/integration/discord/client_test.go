package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

func sampleMessage() LeadMessage {
	return LeadMessage{
		RecipientName: "Alice",
		SenderName:    "alice#1234",
		LeadName:      "Jane Tan",
		Email:         "jane@example.com",
		Phone:         "9123 4567",
		AdditionalData: []entity.AdditionalField{
			{Key: "budget", Value: "500k"},
			{Key: "empty", Value: ""},
			{Key: "project", Value: "Lentor Central"},
		},
	}
}

func TestFormatLeadMessage_Golden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "lead_message", []byte(FormatLeadMessage(sampleMessage(), "+65")))
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		name, phone, want string
	}{
		{"local number", "91234567", "https://wa.me/+6591234567"},
		{"spaces and dashes", "9123-4567 ", "https://wa.me/+6591234567"},
		{"international", "+60 12 345 6789", "https://wa.me/+60123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WhatsAppLink(tt.phone, "+65"))
		})
	}
}

func TestClient_SendLeadMessage(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(time.Second, "+65")
	err := c.SendLeadMessage(context.Background(), srv.URL, sampleMessage())

	require.NoError(t, err)
	assert.Equal(t, "alice#1234", got.Username)
	assert.Contains(t, got.Content, "Hello Alice, you have a new lead:")
}

func TestClient_SendLeadMessage_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, "+65")
	err := c.SendLeadMessage(context.Background(), srv.URL, sampleMessage())

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "Unknown Webhook")
}

func TestClient_SendLeadMessage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, "+65")
	start := time.Now()
	err := c.SendLeadMessage(context.Background(), srv.URL, sampleMessage())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
