package events

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/messaging"
)

type actionConsumer struct {
	rabbitmq *messaging.RabbitMQ
	logger   logging.Logger
}

func NewActionConsumer(rabbitmq *messaging.RabbitMQ, logger logging.Logger) *actionConsumer {
	return &actionConsumer{
		rabbitmq: rabbitmq,
		logger:   logger,
	}
}

func (c *actionConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.ActionsQueue, []string{messaging.ActionRoutingAll}, func(ctx context.Context, msg amqp091.Delivery) error {
		var envelope messaging.ActionEnvelope
		if err := json.Unmarshal(msg.Body, &envelope); err != nil {
			c.logger.Warn(logging.RabbitMQ, logging.ExternalService, "failed to unmarshal action envelope", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		c.logger.Info(logging.RabbitMQ, logging.ExternalService, "action event received", map[logging.ExtraKey]any{
			logging.EventName: envelope.Event,
			logging.RoomId:    envelope.RoomID,
		})

		return nil
	})
}
