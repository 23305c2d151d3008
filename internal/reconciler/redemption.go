package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/coordinator"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/metrics"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

// handleRedemptionRequested runs the redemption pipeline:
// safety gate, token lookup, publication, then finalization in one transaction.
func (e *engine) handleRedemptionRequested(ctx context.Context, ev *domain.RedemptionRequested) (string, error) {
	safe, err := e.gate.IsContentSafe(ctx, ev.Content, ev.Policy)
	if err != nil {
		return "", fmt.Errorf("safety check for token %d: %w", ev.TokenID, err)
	}
	if !safe {
		logger.InfoCtx(ctx, "Redemption content rejected by safety gate",
			zap.Uint64("tokenID", ev.TokenID),
			zap.String("creatorXID", ev.CreatorXID),
			zap.String("policy", ev.Policy))
		return metrics.OutcomeRejected, nil
	}

	token, err := e.store.GetToken(ctx, ev.TokenID)
	if err != nil {
		return "", fmt.Errorf("failed to get token %d: %w", ev.TokenID, err)
	}
	if token == nil || token.Redeemed {
		logger.WarnCtx(ctx, "Redemption of token not indexed, already redeemed or burned",
			zap.Uint64("tokenID", ev.TokenID),
			zap.String("txHash", ev.Log.TxHash))
		return metrics.OutcomeNoop, nil
	}

	var reference, accountHandle string
	publication, err := e.coordinator.Publish(ctx, ev.CreatorXID, ev.Content)
	switch {
	case err == nil:
		reference = publication.Reference
		accountHandle = publication.AccountHandle
	case errors.Is(err, domain.ErrUserNotFound):
		logger.WarnCtx(ctx, "No linked user for creator, skipping publication",
			zap.Uint64("tokenID", ev.TokenID),
			zap.String("creatorXID", ev.CreatorXID))
	case errors.Is(err, coordinator.ErrPublicationFailed):
		// On-chain state is authoritative, the redemption is finalized without a reference
		logger.ErrorCtx(ctx, err, zap.Uint64("tokenID", ev.TokenID))
	default:
		return "", fmt.Errorf("failed to publish redemption of token %d: %w", ev.TokenID, err)
	}

	record, err := e.store.FinalizeRedemption(ctx, store.FinalizeRedemptionInput{
		ID:                    ulid.MustNewDefault(e.clock.Now()).String(),
		TokenID:               ev.TokenID,
		ExternalPublicationID: reference,
		AccountHandle:         accountHandle,
		Policy:                ev.Policy,
		Content:               ev.Content,
		TxHash:                ev.Log.TxHash,
	})
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		logger.WarnCtx(ctx, "Token redeemed concurrently, nothing to finalize",
			zap.Uint64("tokenID", ev.TokenID))
		return metrics.OutcomeNoop, nil
	case err != nil:
		return "", fmt.Errorf("failed to finalize redemption of token %d: %w", ev.TokenID, err)
	}

	logger.InfoCtx(ctx, "Token redeemed",
		zap.Uint64("tokenID", ev.TokenID),
		zap.String("recordID", record.ID),
		zap.String("reference", reference))
	return metrics.OutcomeApplied, nil
}
