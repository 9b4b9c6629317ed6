package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadNotifier entrega uma notificação tirada da fila.
type LeadNotifier interface {
	NotifyJob(ctx context.Context, job NotificationJob) error
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier LeadNotifier
	log      *slog.Logger
}

func NewWorker(ch *amqp.Channel, notifier LeadNotifier, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{Channel: ch, Notifier: notifier, log: log}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.log.Info("👷 worker de notificações aguardando", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal do RabbitMQ fechado")
			}
			w.handleDelivery(ctx, d.Body, d.MessageId, &d)
		}
	}
}

// handleDelivery dá ack no sucesso e manda para a DLQ jobs inválidos ou que falharam.
func (w *Worker) handleDelivery(ctx context.Context, body []byte, messageID string, ack acknowledger) {
	var job NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.log.Error("❌ [WORKER] JSON inválido", "message_id", messageID, "error", err)
		ack.Nack(false, false)
		return
	}

	if err := w.Notifier.NotifyJob(ctx, job); err != nil {
		w.log.Warn("❌ [WORKER] notificação falhou, enviando para DLQ",
			"lead_id", job.LeadID, "participant_id", job.SlotID, "error", err)
		ack.Nack(false, false)
		return
	}

	w.log.Info("✅ [WORKER] notificação entregue", "lead_id", job.LeadID, "participant_id", job.SlotID)
	ack.Ack(false)
}
