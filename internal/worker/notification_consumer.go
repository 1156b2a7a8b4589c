package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/queue"
)

// NotificationConsumer drena a fila report_events e emite as
// notificações correspondentes. Por ora o canal de entrega é o log;
// o ponto de extensão para e-mail/push fica em notify.
type NotificationConsumer struct {
	consumer queue.Consumer
	log      *logrus.Entry
}

func NewNotificationConsumer(consumer queue.Consumer, log *logrus.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		consumer: consumer,
		log:      logrus.NewEntry(log),
	}
}

func (c *NotificationConsumer) Start(ctx context.Context) error {
	c.log.Infof("starting NotificationConsumer on queue '%s'", queue.ReportEventsQueue)

	handler := func(ctx context.Context, body []byte) error {
		var event entity.ReportEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal report event: %w", err)
		}
		return c.notify(ctx, event)
	}

	return c.consumer.Consume(ctx, queue.ReportEventsQueue, handler)
}

func (c *NotificationConsumer) notify(_ context.Context, event entity.ReportEvent) error {
	log := c.log.WithFields(logrus.Fields{
		"report": event.Number,
		"action": event.Action,
		"actor":  event.ActorName,
	})

	switch event.Action {
	case entity.ActionAssigned:
		log.WithField("assigned_to", event.AssignedTo).Info("laudo atribuído, notificando policial")
	case entity.ActionCancelled:
		log.Info("laudo cancelado, notificando envolvidos")
	case entity.ActionUpdated:
		if event.Status == entity.StatusCompleted {
			log.Info("laudo concluído, notificando agente requisitante")
		} else {
			log.Debug("laudo atualizado")
		}
	default:
		log.Debug("evento sem notificação associada")
	}

	return nil
}
