package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"tshirt-bundle/models"
)

// NATSNotifier relays cart updates onto a NATS subject so storefront
// components outside this page (cart drawer service, analytics) can react.
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
}

// NewNATSNotifier connects to url and publishes on subject
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("tshirt-bundle"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSNotifier{nc: nc, subject: subject}, nil
}

func (n *NATSNotifier) Publish(ctx context.Context, event models.CartUpdateEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cart update: %w", err)
	}

	msg := nats.NewMsg(n.subject)
	msg.Data = data
	msg.Header.Set("Event", event.Name)
	msg.Header.Set("Source", event.SourceID)

	if err := n.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish cart update: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}
