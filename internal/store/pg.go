package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, defaults are used:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
// database/sql treats MaxOpenConns=0 as "unlimited" and MaxIdleConns=0 as "no idle connections",
// neither of which is wanted here.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// MaxIdleConns must not exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// GetBlockCursor retrieves the last processed block number of owner on a chain
func (s *pgStore) GetBlockCursor(ctx context.Context, owner domain.CursorOwner, chain domain.Chain) (uint64, error) {
	return getBlockCursor(ctx, s.db, owner, chain)
}

// SetBlockCursor stores the last processed block number of owner on a chain
func (s *pgStore) SetBlockCursor(ctx context.Context, owner domain.CursorOwner, chain domain.Chain, blockNumber uint64) error {
	return setBlockCursor(ctx, s.db, owner, chain, blockNumber)
}

// GetToken retrieves a token by its contract token id
func (s *pgStore) GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error) {
	var token schema.Token
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// GetTokensByOwner retrieves the tokens currently owned by an address, ordered by token id
func (s *pgStore) GetTokensByOwner(ctx context.Context, owner string) ([]schema.Token, error) {
	var tokens []schema.Token
	err := s.db.WithContext(ctx).
		Where("owner = ?", domain.NormalizeAddress(owner)).
		Order("token_id ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by owner: %w", err)
	}
	return tokens, nil
}

// CreatePendingMint records a submitted mint transaction
func (s *pgStore) CreatePendingMint(ctx context.Context, input CreatePendingMintInput) error {
	pendingMint := schema.PendingMint{
		TxHash:        domain.NormalizeTxHash(input.TxHash),
		CreatorUserID: input.CreatorUserID,
		AccountHandle: input.AccountHandle,
		Recipient:     domain.NormalizeAddress(input.Recipient),
		Policy:        input.Policy,
		Metadata:      input.Metadata,
	}

	// The hash is unique per submission, a retried insert of the same hash keeps the first row
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(&pendingMint).Error
	if err != nil {
		return fmt.Errorf("failed to create pending mint: %w", err)
	}

	return nil
}

// GetPendingMint retrieves a pending mint by transaction hash
func (s *pgStore) GetPendingMint(ctx context.Context, txHash string) (*schema.PendingMint, error) {
	var pendingMint schema.PendingMint
	err := s.db.WithContext(ctx).
		Where("tx_hash = ?", domain.NormalizeTxHash(txHash)).
		First(&pendingMint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending mint: %w", err)
	}
	return &pendingMint, nil
}

// PromotePendingMint creates the token from the pending mint and deletes the pending mint
func (s *pgStore) PromotePendingMint(ctx context.Context, input PromotePendingMintInput) (*schema.Token, error) {
	var token *schema.Token

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the pending mint so a concurrent promotion waits for this one
		var pendingMint schema.PendingMint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tx_hash = ?", domain.NormalizeTxHash(input.TxHash)).
			First(&pendingMint).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPendingMintNotFound
			}
			return fmt.Errorf("failed to get pending mint: %w", err)
		}

		// 2. Create the token, the chain's recipient wins over the requested one
		owner := domain.NormalizeAddress(input.Owner)
		if owner != pendingMint.Recipient {
			logger.WarnCtx(ctx, "Confirmed recipient differs from pending mint recipient",
				zap.String("txHash", pendingMint.TxHash),
				zap.String("pendingRecipient", pendingMint.Recipient),
				zap.String("owner", owner))
		}

		newToken := schema.Token{
			TokenID:       input.TokenID,
			Owner:         owner,
			CreatorUserID: pendingMint.CreatorUserID,
			AccountHandle: pendingMint.AccountHandle,
			Redeemed:      false,
			MintTxHash:    pendingMint.TxHash,
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoNothing: true,
		}).Create(&newToken)
		if result.Error != nil {
			return fmt.Errorf("failed to create token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: token_id=%d", domain.ErrTokenAlreadyExists, input.TokenID)
		}

		// 3. Delete the pending mint
		if err := tx.Delete(&pendingMint).Error; err != nil {
			return fmt.Errorf("failed to delete pending mint: %w", err)
		}

		token = &newToken
		return nil
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// TransferToken updates the owner of a token
func (s *pgStore) TransferToken(ctx context.Context, tokenID uint64, to string) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Token{}).
		Where("token_id = ?", tokenID).
		Updates(map[string]interface{}{
			"owner":      domain.NormalizeAddress(to),
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to transfer token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// BurnToken removes a token from the index
func (s *pgStore) BurnToken(ctx context.Context, tokenID uint64) error {
	result := s.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&schema.Token{})
	if result.Error != nil {
		return fmt.Errorf("failed to burn token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// FinalizeRedemption records a redemption and removes the redeemed token
func (s *pgStore) FinalizeRedemption(ctx context.Context, input FinalizeRedemptionInput) (*schema.RedeemedRecord, error) {
	var record *schema.RedeemedRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the token row, it may have been burned or redeemed since it was read
		var token schema.Token
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_id = ?", input.TokenID).
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to lock token: %w", err)
		}
		if token.Redeemed {
			return domain.ErrTokenNotFound
		}

		// 2. Record the redemption
		redeemed := schema.RedeemedRecord{
			ID:                    input.ID,
			CreatorUserID:         token.CreatorUserID,
			TokenID:               token.TokenID,
			ExternalPublicationID: input.ExternalPublicationID,
			AccountHandle:         input.AccountHandle,
			Policy:                input.Policy,
			Content:               input.Content,
			TxHash:                domain.NormalizeTxHash(input.TxHash),
		}
		if redeemed.AccountHandle == "" {
			redeemed.AccountHandle = token.AccountHandle
		}
		if err := tx.Create(&redeemed).Error; err != nil {
			return fmt.Errorf("failed to create redeemed record: %w", err)
		}

		// 3. Increment the creator's redemption count
		result := tx.Model(&schema.User{}).
			Where("id = ?", token.CreatorUserID).
			Update("redemption_count", gorm.Expr("redemption_count + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to increment redemption count: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			logger.WarnCtx(ctx, "Creator not found, redemption count not incremented",
				zap.String("creatorUserID", token.CreatorUserID),
				zap.Uint64("tokenID", token.TokenID))
		}

		// 4. Remove the token from the index
		if err := tx.Delete(&token).Error; err != nil {
			return fmt.Errorf("failed to delete redeemed token: %w", err)
		}

		record = &redeemed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetRedeemedRecordByTokenID retrieves the redemption record of a token
func (s *pgStore) GetRedeemedRecordByTokenID(ctx context.Context, tokenID uint64) (*schema.RedeemedRecord, error) {
	var record schema.RedeemedRecord
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get redeemed record: %w", err)
	}
	return &record, nil
}

// GetUserByID retrieves a user by application id
func (s *pgStore) GetUserByID(ctx context.Context, id string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByXID retrieves the user linked to a social account id
func (s *pgStore) GetUserByXID(ctx context.Context, xID string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("x_id = ?", xID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by x id: %w", err)
	}
	return &user, nil
}
