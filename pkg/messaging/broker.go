package messaging

import (
	"context"
)

// Broker is the integration-event transport. The outbox processor is
// its only producer in this service.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
