package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

// NotificationJob carrega os dados do lead. O webhook do participante não
// viaja na mensagem: o worker relê o participante antes de enviar.
type NotificationJob struct {
	MessageID      string                   `json:"message_id"`
	LeadID         int64                    `json:"lead_id"`
	RotationID     int64                    `json:"round_robin_id"`
	SlotID         int64                    `json:"participant_id"`
	SlotName       string                   `json:"participant_name"`
	DiscordName    string                   `json:"discord_name,omitempty"`
	LeadName       string                   `json:"name"`
	Email          string                   `json:"email"`
	Phone          string                   `json:"phone"`
	AdditionalData []entity.AdditionalField `json:"additional_data,omitempty"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishNotification(ctx context.Context, job NotificationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    job.MessageID,
			Timestamp:    time.Now(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
