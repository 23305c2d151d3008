package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

// CursorStore defines the interface for storing and retrieving block cursors
//
//go:generate mockgen -source=cursor_store.go -destination=../mocks/cursor_store.go -package=mocks -mock_names=CursorStore=MockCursorStore
type CursorStore interface {
	// GetBlockCursor retrieves the last processed block number of owner on a chain, 0 if none
	GetBlockCursor(ctx context.Context, owner domain.CursorOwner, chain domain.Chain) (uint64, error)
	// SetBlockCursor stores the last processed block number of owner on a chain
	SetBlockCursor(ctx context.Context, owner domain.CursorOwner, chain domain.Chain, blockNumber uint64) error
}

func getBlockCursor(ctx context.Context, db *gorm.DB, owner domain.CursorOwner, chain domain.Chain) (uint64, error) {
	var kv schema.KeyValueStore
	err := db.WithContext(ctx).Where("key = ?", domain.BlockCursorKey(owner, chain)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor %q: %w", kv.Value, err)
	}

	return blockNumber, nil
}

func setBlockCursor(ctx context.Context, db *gorm.DB, owner domain.CursorOwner, chain domain.Chain, blockNumber uint64) error {
	kv := schema.KeyValueStore{
		Key:   domain.BlockCursorKey(owner, chain),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}
