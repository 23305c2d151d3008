package messaging

import (
	"context"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

// Publisher defines the interface for publishing raw contract logs to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishLog publishes a contract log, duplicates of the same log are dropped by the broker
	PublishLog(ctx context.Context, log domain.RawLog) error
	// Close closes the connection
	Close()
}
