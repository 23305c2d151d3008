package submitter

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

// redeemModePublish is the redeem mode argument of the contract's redeem method
const redeemModePublish uint8 = 0

// ErrSigningKeyMissing is returned when a user has no embedded wallet key to sign with
var ErrSigningKeyMissing = errors.New("user has no signing key")

// MintRequest asks to mint a token for a user's linked account
type MintRequest struct {
	UserID string
	Policy string
}

// RedeemRequest asks to redeem a token owned by a user
type RedeemRequest struct {
	UserID  string
	TokenID uint64
	Content string
}

// Submitter sends mint and redeem transactions to the contract
type Submitter interface {
	// SubmitMint mints a token to the user's embedded address, records the pending mint
	// and waits for inclusion. Returns the transaction hash.
	SubmitMint(ctx context.Context, req MintRequest) (string, error)
	// SubmitRedeem redeems a token with the user's key and waits for inclusion.
	// Returns the transaction hash.
	SubmitRedeem(ctx context.Context, req RedeemRequest) (string, error)
}

type submitter struct {
	store      store.Store
	transactor adapter.ContractTransactor
	json       adapter.JSON
	minterKey  *ecdsa.PrivateKey
}

// New creates a new submitter signing mints with minterPrivateKey (hex, 0x prefix optional)
func New(st store.Store, transactor adapter.ContractTransactor, json adapter.JSON, minterPrivateKey string) (Submitter, error) {
	key, err := parsePrivateKey(minterPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid minter private key: %w", err)
	}

	return &submitter{
		store:      st,
		transactor: transactor,
		json:       json,
		minterKey:  key,
	}, nil
}

func (s *submitter) SubmitMint(ctx context.Context, req MintRequest) (string, error) {
	user, err := s.store.GetUserByID(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: id=%s", domain.ErrUserNotFound, req.UserID)
	}
	if user.XID == nil {
		return "", fmt.Errorf("%w: user=%s", domain.ErrAccountNotLinked, user.ID)
	}
	if !common.IsHexAddress(user.EmbeddedAddress) {
		return "", fmt.Errorf("user %s has no valid embedded address", user.ID)
	}

	xID, ok := new(big.Int).SetString(*user.XID, 10)
	if !ok {
		return "", fmt.Errorf("invalid x id %q for user %s", *user.XID, user.ID)
	}

	recipient := common.HexToAddress(user.EmbeddedAddress)
	tx, err := s.transactor.Transact(ctx, s.minterKey, ethereum.MethodMintTo, recipient, xID, req.Policy)
	if err != nil {
		return "", fmt.Errorf("failed to send mint transaction: %w", err)
	}
	txHash := strings.ToLower(tx.Hash().Hex())

	// Recorded before inclusion so the confirmation log always finds it
	metadata, err := s.json.Marshal(map[string]string{"x_id": *user.XID})
	if err != nil {
		return txHash, fmt.Errorf("failed to encode pending mint metadata: %w", err)
	}
	err = s.store.CreatePendingMint(ctx, store.CreatePendingMintInput{
		TxHash:        txHash,
		CreatorUserID: user.ID,
		AccountHandle: user.XHandle,
		Recipient:     recipient.Hex(),
		Policy:        req.Policy,
		Metadata:      datatypes.JSON(metadata),
	})
	if err != nil {
		return txHash, fmt.Errorf("failed to record pending mint %s: %w", txHash, err)
	}

	logger.InfoCtx(ctx, "Mint transaction sent",
		zap.String("txHash", txHash),
		zap.String("userID", user.ID),
		zap.String("recipient", recipient.Hex()))

	if err := s.waitIncluded(ctx, tx); err != nil {
		return txHash, err
	}
	return txHash, nil
}

func (s *submitter) SubmitRedeem(ctx context.Context, req RedeemRequest) (string, error) {
	user, err := s.store.GetUserByID(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: id=%s", domain.ErrUserNotFound, req.UserID)
	}
	if user.SigningKey == nil || *user.SigningKey == "" {
		return "", fmt.Errorf("%w: user=%s", ErrSigningKeyMissing, user.ID)
	}

	key, err := parsePrivateKey(*user.SigningKey)
	if err != nil {
		return "", fmt.Errorf("invalid signing key for user %s: %w", user.ID, err)
	}

	tokenID := new(big.Int).SetUint64(req.TokenID)
	tx, err := s.transactor.Transact(ctx, key, ethereum.MethodRedeem, tokenID, req.Content, redeemModePublish)
	if err != nil {
		return "", fmt.Errorf("failed to send redeem transaction: %w", err)
	}
	txHash := strings.ToLower(tx.Hash().Hex())

	logger.InfoCtx(ctx, "Redeem transaction sent",
		zap.String("txHash", txHash),
		zap.String("userID", user.ID),
		zap.Uint64("tokenID", req.TokenID))

	if err := s.waitIncluded(ctx, tx); err != nil {
		return txHash, err
	}
	return txHash, nil
}

func (s *submitter) waitIncluded(ctx context.Context, tx *types.Transaction) error {
	receipt, err := s.transactor.WaitMined(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s in block %s", domain.ErrTransactionReverted, tx.Hash().Hex(), receipt.BlockNumber)
	}
	return nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X"))
}
