// Package notify consumes unconfirmed-product events and relays them to the
// business owner over WhatsApp, closing the human-in-the-loop path: the
// owner answers "SI <precio>" or "NO" through the decision endpoint.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/messaging"
	"github.com/ventia/ventia-backend/internal/repository"
)

var unconfirmedQueriedType = entity.UnconfirmedProductQueried{}.EventType()

// Sender delivers the owner notification.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumberID, to, text string) error
}

type OwnerNotifier struct {
	subscriber messaging.Subscriber
	businesses repository.BusinessRepository
	sender     Sender
	topic      string
	groupID    string
	log        *slog.Logger
}

func NewOwnerNotifier(
	subscriber messaging.Subscriber,
	businesses repository.BusinessRepository,
	sender Sender,
	topic, groupID string,
	log *slog.Logger,
) *OwnerNotifier {
	return &OwnerNotifier{
		subscriber: subscriber,
		businesses: businesses,
		sender:     sender,
		topic:      topic,
		groupID:    groupID,
		log:        log,
	}
}

// Run consumes the notification topic until ctx is cancelled.
func (n *OwnerNotifier) Run(ctx context.Context) {
	n.subscriber.Consume(ctx, n.topic, n.groupID, n.handle)
}

func (n *OwnerNotifier) handle(ctx context.Context, payload []byte) error {
	env, err := messaging.Open(payload)
	if err != nil {
		// Malformed payloads are logged and dropped, not retried.
		n.log.Error("malformed notification event", "error", err)
		return nil
	}

	// The topic also carries audit events; only customer queries
	// produce an owner message.
	if env.Type != unconfirmedQueriedType {
		n.log.Debug("ignoring event", "type", env.Type)
		return nil
	}

	var evt entity.UnconfirmedProductQueried
	if err := env.Decode(&evt); err != nil {
		n.log.Error("malformed notification event", "error", err)
		return nil
	}

	business, err := n.businesses.FindByID(ctx, evt.BusinessID)
	if err != nil {
		return fmt.Errorf("failed to resolve business %d: %w", evt.BusinessID, err)
	}

	text := fmt.Sprintf(
		"Un cliente (%s) preguntó por '%s', que aún no está confirmado en tu catálogo.\n"+
			"Responde SI <precio> para confirmarlo o NO para rechazarlo.\n"+
			"Referencia del producto: %d",
		evt.CustomerPhone, evt.ProductName, evt.ProductID,
	)

	if err := n.sender.SendMessage(ctx, business.WhatsAppNumberID, business.WhatsAppNumber, text); err != nil {
		return fmt.Errorf("failed to notify owner of business %d: %w", evt.BusinessID, err)
	}

	n.log.Info("owner notified",
		"business_id", evt.BusinessID,
		"product_id", evt.ProductID,
		"event_id", evt.EventID)
	return nil
}
