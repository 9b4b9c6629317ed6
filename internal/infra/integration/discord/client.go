package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 512

type Client struct {
	httpClient  *http.Client
	phonePrefix string
}

// NewClient cria o cliente com timeout por chamada. phonePrefix é colocado na
// frente de números sem "+" no link do WhatsApp.
func NewClient(timeout time.Duration, phonePrefix string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		phonePrefix: phonePrefix,
	}
}

// HTTPError é devolvido quando o webhook responde fora de 2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (c *Client) SendLeadMessage(ctx context.Context, webhookURL string, msg LeadMessage) error {
	payload, err := json.Marshal(WebhookPayload{
		Content:  FormatLeadMessage(msg, c.phonePrefix),
		Username: msg.SenderName,
	})
	if err != nil {
		return fmt.Errorf("erro ao serializar mensagem: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook inválido: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao chamar webhook do Discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// FormatLeadMessage monta o texto da notificação.
func FormatLeadMessage(msg LeadMessage, phonePrefix string) string {
	var b strings.Builder
	b.WriteString("New Lead Please take note!\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Hello %s, you have a new lead:\n", msg.RecipientName)
	fmt.Fprintf(&b, "- Name: %s\n", msg.LeadName)
	fmt.Fprintf(&b, "- Email: %s\n", msg.Email)
	fmt.Fprintf(&b, "- Mobile Number: %s", WhatsAppLink(msg.Phone, phonePrefix))
	for _, f := range msg.AdditionalData {
		if f.Key == "" || f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s", f.Key, f.Value)
	}
	return b.String()
}

// WhatsAppLink monta o link wa.me. Números já no formato internacional
// mantêm o próprio código do país.
func WhatsAppLink(phone, prefix string) string {
	phone = strings.TrimSpace(phone)
	international := strings.HasPrefix(phone, "+")

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if international {
		return "https://wa.me/+" + digits.String()
	}
	return "https://wa.me/" + prefix + digits.String()
}
