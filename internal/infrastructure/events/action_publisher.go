package events

import (
	"context"
	"encoding/json"

	"github.com/storelink/relay/internal/domain"
	"github.com/storelink/relay/internal/infrastructure/messaging"
)

// ActionPublisher mirrors commerce lifecycle events onto the broker so
// analytics consumers can see them without touching the relay's fan-out path.
type ActionPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewActionPublisher(rabbitmq *messaging.RabbitMQ) *ActionPublisher {
	return &ActionPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *ActionPublisher) PublishAction(ctx context.Context, name string, roomID domain.RoomID, payload map[string]any) error {
	envelope := messaging.ActionEnvelope{
		Event:   name,
		RoomID:  roomID.String(),
		Payload: payload,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, messaging.ActionRoutingPrefix+name, body)
}
