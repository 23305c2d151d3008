package store

import (
	"context"

	"gorm.io/datatypes"

	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

// CreatePendingMintInput represents the data recorded right after a mint transaction is sent
type CreatePendingMintInput struct {
	TxHash        string
	CreatorUserID string
	AccountHandle string
	Recipient     string
	Policy        string
	Metadata      datatypes.JSON
}

// PromotePendingMintInput represents a confirmed mint to promote into the token index
type PromotePendingMintInput struct {
	TxHash  string
	TokenID uint64
	Owner   string
}

// FinalizeRedemptionInput represents the data written when a redemption is finalized
type FinalizeRedemptionInput struct {
	ID                    string
	TokenID               uint64
	ExternalPublicationID string
	AccountHandle         string
	Policy                string
	Content               string
	TxHash                string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	CursorStore

	// GetToken retrieves a token by its contract token id, nil if it is not indexed
	GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error)
	// GetTokensByOwner retrieves the tokens currently owned by an address
	GetTokensByOwner(ctx context.Context, owner string) ([]schema.Token, error)

	// CreatePendingMint records a submitted mint transaction
	CreatePendingMint(ctx context.Context, input CreatePendingMintInput) error
	// GetPendingMint retrieves a pending mint by transaction hash, nil if none
	GetPendingMint(ctx context.Context, txHash string) (*schema.PendingMint, error)
	// PromotePendingMint creates the token from the pending mint and deletes the pending mint
	// in a single transaction. Returns domain.ErrPendingMintNotFound when there is nothing to promote.
	PromotePendingMint(ctx context.Context, input PromotePendingMintInput) (*schema.Token, error)

	// TransferToken updates the owner of a token. Returns domain.ErrTokenNotFound if the token is not indexed.
	TransferToken(ctx context.Context, tokenID uint64, to string) error
	// BurnToken removes a token from the index. Returns domain.ErrTokenNotFound if the token is not indexed.
	BurnToken(ctx context.Context, tokenID uint64) error

	// FinalizeRedemption locks the token, records the redemption, increments the creator's
	// redemption count and removes the token, all in one transaction.
	// Returns domain.ErrTokenNotFound if the token is gone or already redeemed.
	FinalizeRedemption(ctx context.Context, input FinalizeRedemptionInput) (*schema.RedeemedRecord, error)
	// GetRedeemedRecordByTokenID retrieves the redemption record of a token, nil if none
	GetRedeemedRecordByTokenID(ctx context.Context, tokenID uint64) (*schema.RedeemedRecord, error)

	// GetUserByID retrieves a user by application id, nil if none
	GetUserByID(ctx context.Context, id string) (*schema.User, error)
	// GetUserByXID retrieves the user linked to a social account id, nil if none
	GetUserByXID(ctx context.Context, xID string) (*schema.User, error)
}
