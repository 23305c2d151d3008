package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/coordinator"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
	"github.com/teleport-xyz/teleport-indexer/internal/metrics"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/safety"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

// Config holds the configuration for the reconciliation engine
type Config struct {
	ChainID         domain.Chain
	StartBlock      uint64        // 0 resumes from the cursor, or the subscriber default when unset
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Engine applies decoded contract events to the index store
type Engine interface {
	// Run consumes the log stream until ctx is cancelled or ingestion halts.
	// The log being handled when ctx is cancelled is finished before Run returns.
	Run(ctx context.Context) error
	// HandleLog decodes and applies a single log. Only a decode mismatch is returned;
	// store and transport failures abort the event and are logged.
	HandleLog(ctx context.Context, log domain.RawLog) error
	// Handle applies a decoded event and returns the error that aborted it, if any
	Handle(ctx context.Context, event domain.Event) error
	// Close releases the subscriber
	Close()
}

type engine struct {
	config      Config
	subscriber  messaging.Subscriber
	decoder     ethereum.Decoder
	store       store.Store
	gate        safety.Gate
	coordinator coordinator.Coordinator
	clock       adapter.Clock
}

// NewEngine creates a new reconciliation engine
func NewEngine(
	cfg Config,
	sub messaging.Subscriber,
	decoder ethereum.Decoder,
	st store.Store,
	gate safety.Gate,
	coord coordinator.Coordinator,
	clock adapter.Clock,
) Engine {
	return &engine{
		config:      cfg,
		subscriber:  sub,
		decoder:     decoder,
		store:       st,
		gate:        gate,
		coordinator: coord,
		clock:       clock,
	}
}

// Run consumes the log stream one log at a time
func (e *engine) Run(ctx context.Context) error {
	startBlock := e.config.StartBlock
	if startBlock == 0 {
		cursor, err := e.store.GetBlockCursor(ctx, domain.CursorOwnerReconciler, e.config.ChainID)
		if err != nil {
			return fmt.Errorf("failed to get block cursor: %w", err)
		}
		if cursor > 0 {
			// The cursor block is delivered again, handlers are idempotent
			startBlock = cursor
			logger.Info("Resuming from block cursor", zap.String("chain", string(e.config.ChainID)), zap.Uint64("block", startBlock))
		} else {
			logger.Info("No block cursor, starting from subscriber default", zap.String("chain", string(e.config.ChainID)))
		}
	} else {
		logger.Info("Starting from configured block", zap.String("chain", string(e.config.ChainID)), zap.Uint64("block", startBlock))
	}

	var lastHandledBlock, lastSavedBlock uint64
	lastSaveTime := e.clock.Now()

	saveCursor := func(ctx context.Context, block uint64) {
		if err := e.store.SetBlockCursor(ctx, domain.CursorOwnerReconciler, e.config.ChainID, block); err != nil {
			logger.WarnErr("Failed to save block cursor", err, zap.Uint64("block", block))
			return
		}
		lastSavedBlock = block
		lastSaveTime = e.clock.Now()
	}

	handler := func(log domain.RawLog) error {
		// Shutdown must not interrupt a half-applied event
		handleCtx := context.WithoutCancel(ctx)

		if err := e.HandleLog(handleCtx, log); err != nil {
			return err
		}

		// Redelivered logs from older blocks never move the cursor backwards
		if log.BlockNumber > lastHandledBlock {
			lastHandledBlock = log.BlockNumber
		}
		if lastHandledBlock > lastSavedBlock &&
			(lastHandledBlock-lastSavedBlock >= e.config.CursorSaveFreq ||
				e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay) {
			saveCursor(handleCtx, lastHandledBlock)
		}
		return nil
	}

	logger.Info("Starting log subscription", zap.String("chain", string(e.config.ChainID)))
	err := e.subscriber.SubscribeLogs(ctx, startBlock, handler)

	if lastHandledBlock > lastSavedBlock {
		saveCursor(context.WithoutCancel(ctx), lastHandledBlock)
	}

	if errors.Is(err, domain.ErrDecodeMismatch) {
		return fmt.Errorf("ingestion halted: %w", err)
	}
	return err
}

// HandleLog decodes a log and applies the resulting event
func (e *engine) HandleLog(ctx context.Context, log domain.RawLog) error {
	event, err := e.decoder.Decode(log)
	if err != nil {
		metrics.ObserveEvent(string(domain.EventTypeUnrecognized), metrics.OutcomeFatal, 0)
		return fmt.Errorf("failed to decode log %s: %w", log.ID(), err)
	}

	if err := e.Handle(ctx, event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("event aborted: %w", err),
			zap.String("type", string(event.Type())),
			zap.String("log", log.ID()),
			zap.Uint64("block", log.BlockNumber))
	}

	metrics.SetLastBlock(log.BlockNumber)
	return nil
}

// Handle applies a decoded event to the index store
func (e *engine) Handle(ctx context.Context, event domain.Event) error {
	start := e.clock.Now()

	var outcome string
	var err error
	switch ev := event.(type) {
	case *domain.MintConfirmed:
		outcome, err = e.handleMintConfirmed(ctx, ev)
	case *domain.OwnershipTransferred:
		outcome, err = e.handleOwnershipTransferred(ctx, ev)
	case *domain.RedemptionRequested:
		outcome, err = e.handleRedemptionRequested(ctx, ev)
	case *domain.Unrecognized:
		logger.DebugCtx(ctx, "Dropping unrecognized log",
			zap.String("txHash", ev.Log.TxHash),
			zap.String("reason", ev.Reason))
		outcome = metrics.OutcomeNoop
	default:
		outcome = metrics.OutcomeNoop
	}

	if err != nil {
		outcome = metrics.OutcomeAborted
	}
	metrics.ObserveEvent(string(event.Type()), outcome, e.clock.Since(start))

	return err
}

func (e *engine) handleMintConfirmed(ctx context.Context, ev *domain.MintConfirmed) (string, error) {
	token, err := e.store.PromotePendingMint(ctx, store.PromotePendingMintInput{
		TxHash:  ev.TxHash,
		TokenID: ev.TokenID,
		Owner:   ev.Recipient,
	})
	switch {
	case errors.Is(err, domain.ErrPendingMintNotFound):
		logger.WarnCtx(ctx, "No pending mint for confirmation, already promoted or not ours",
			zap.String("txHash", ev.TxHash),
			zap.Uint64("tokenID", ev.TokenID))
		return metrics.OutcomeNoop, nil
	case errors.Is(err, domain.ErrTokenAlreadyExists):
		logger.WarnCtx(ctx, "Token id already indexed, pending mint kept",
			zap.String("txHash", ev.TxHash),
			zap.Uint64("tokenID", ev.TokenID))
		return metrics.OutcomeNoop, nil
	case err != nil:
		return "", fmt.Errorf("failed to promote pending mint %s: %w", ev.TxHash, err)
	}

	logger.InfoCtx(ctx, "Mint confirmed",
		zap.Uint64("tokenID", token.TokenID),
		zap.String("owner", token.Owner),
		zap.String("txHash", ev.TxHash))
	return metrics.OutcomeApplied, nil
}

func (e *engine) handleOwnershipTransferred(ctx context.Context, ev *domain.OwnershipTransferred) (string, error) {
	if ev.IsMint() {
		// Covered by MintConfirmed
		return metrics.OutcomeNoop, nil
	}

	if ev.IsBurn() {
		err := e.store.BurnToken(ctx, ev.TokenID)
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			logger.DebugCtx(ctx, "Burned token not indexed", zap.Uint64("tokenID", ev.TokenID))
			return metrics.OutcomeNoop, nil
		case err != nil:
			return "", fmt.Errorf("failed to burn token %d: %w", ev.TokenID, err)
		}

		logger.InfoCtx(ctx, "Token burned", zap.Uint64("tokenID", ev.TokenID), zap.String("from", ev.From))
		return metrics.OutcomeApplied, nil
	}

	err := e.store.TransferToken(ctx, ev.TokenID, ev.To)
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		logger.WarnCtx(ctx, "Transfer of token not indexed, ignoring",
			zap.Uint64("tokenID", ev.TokenID),
			zap.String("to", ev.To),
			zap.String("txHash", ev.Log.TxHash))
		return metrics.OutcomeNoop, nil
	case err != nil:
		return "", fmt.Errorf("failed to transfer token %d: %w", ev.TokenID, err)
	}

	logger.InfoCtx(ctx, "Token transferred",
		zap.Uint64("tokenID", ev.TokenID),
		zap.String("from", ev.From),
		zap.String("to", ev.To))
	return metrics.OutcomeApplied, nil
}

// Close closes the underlying subscriber
func (e *engine) Close() {
	e.subscriber.Close()
}
