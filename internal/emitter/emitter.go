package emitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

// Config holds the configuration for the log emitter
type Config struct {
	ChainID         domain.Chain
	StartBlock      uint64
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Emitter forwards contract logs from the chain to the message broker
type Emitter interface {
	// Run starts forwarding logs until ctx is cancelled or publishing fails
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

type emitter struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	cursors    store.CursorStore
	config     Config
	clock      adapter.Clock
}

// NewEmitter creates a new log emitter
func NewEmitter(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	cursors store.CursorStore,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	return &emitter{
		subscriber: sub,
		publisher:  pub,
		cursors:    cursors,
		config:     cfg,
		clock:      clock,
	}
}

// startBlock resolves where to start: configured block, then cursor, then the chain head
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	chain := zap.String("chain", string(e.config.ChainID))

	if e.config.StartBlock > 0 {
		logger.Info("Starting from configured block", chain, zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	lastBlock, err := e.cursors.GetBlockCursor(ctx, domain.CursorOwnerEmitter, e.config.ChainID)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if lastBlock > 0 {
		// The cursor block may be partially published, the broker drops the duplicates
		logger.Info("Resuming from last published block", chain, zap.Uint64("block", lastBlock))
		return lastBlock, nil
	}

	latestBlock, err := e.subscriber.GetLatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	logger.Info("Starting from latest block", chain, zap.Uint64("block", latestBlock))
	return latestBlock, nil
}

// Run forwards logs one at a time, saving the cursor periodically
func (e *emitter) Run(ctx context.Context) error {
	fromBlock, err := e.startBlock(ctx)
	if err != nil {
		return err
	}

	var lastPublishedBlock, lastSavedBlock uint64
	lastSaveTime := e.clock.Now()

	saveCursor := func(ctx context.Context, block uint64) {
		if err := e.cursors.SetBlockCursor(ctx, domain.CursorOwnerEmitter, e.config.ChainID, block); err != nil {
			logger.WarnErr("Failed to save block cursor", err, zap.Uint64("block", block))
			return
		}
		lastSavedBlock = block
		lastSaveTime = e.clock.Now()
	}

	handler := func(log domain.RawLog) error {
		if err := e.publisher.PublishLog(ctx, log); err != nil {
			return fmt.Errorf("failed to publish log %s: %w", log.ID(), err)
		}
		if log.BlockNumber > lastPublishedBlock {
			lastPublishedBlock = log.BlockNumber
		}

		if lastPublishedBlock > lastSavedBlock &&
			(lastPublishedBlock-lastSavedBlock >= e.config.CursorSaveFreq ||
				e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay) {
			saveCursor(ctx, lastPublishedBlock)
		}
		return nil
	}

	logger.Info("Starting log subscription", zap.String("chain", string(e.config.ChainID)), zap.Uint64("fromBlock", fromBlock))
	err = e.subscriber.SubscribeLogs(ctx, fromBlock, handler)

	if lastPublishedBlock > lastSavedBlock {
		saveCursor(context.WithoutCancel(ctx), lastPublishedBlock)
	}

	if err != nil {
		return err
	}
	return ctx.Err()
}

// Close closes the subscriber and the publisher
func (e *emitter) Close() {
	e.subscriber.Close()
	e.publisher.Close()
}
