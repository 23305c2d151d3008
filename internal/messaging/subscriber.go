package messaging

import (
	"context"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

// LogHandler is called for every contract log, one at a time.
// The next log is not read until the handler returns.
type LogHandler func(log domain.RawLog) error

// Subscriber defines the common interface for subscribing to the contract log stream.
// Both the Ethereum websocket subscriber and the JetStream subscriber implement it.
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeLogs delivers contract logs starting at fromBlock (0 for latest) until
	// the context is cancelled or the handler returns an error
	SubscribeLogs(ctx context.Context, fromBlock uint64, handler LogHandler) error

	// GetLatestBlock returns the latest block number known to the source
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}
