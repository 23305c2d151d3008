package rest

import (
	"encoding/json"
	"time"

	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

// TokenResponse is a live token of the ownership index
type TokenResponse struct {
	TokenID       uint64    `json:"token_id"`
	Owner         string    `json:"owner"`
	CreatorUserID string    `json:"creator_user_id"`
	AccountHandle string    `json:"account_handle"`
	Redeemed      bool      `json:"redeemed"`
	MintTxHash    string    `json:"mint_tx_hash"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TokenListResponse is the list of tokens held by an owner
type TokenListResponse struct {
	Owner  string          `json:"owner"`
	Tokens []TokenResponse `json:"tokens"`
}

// RedemptionResponse is a finalized redemption
type RedemptionResponse struct {
	ID                    string    `json:"id"`
	TokenID               uint64    `json:"token_id"`
	CreatorUserID         string    `json:"creator_user_id"`
	ExternalPublicationID string    `json:"external_publication_id"`
	AccountHandle         string    `json:"account_handle"`
	Policy                string    `json:"policy"`
	Content               string    `json:"content"`
	TxHash                string    `json:"tx_hash"`
	CreatedAt             time.Time `json:"created_at"`
}

// PendingMintResponse is a submitted mint awaiting confirmation
type PendingMintResponse struct {
	TxHash        string          `json:"tx_hash"`
	CreatorUserID string          `json:"creator_user_id"`
	AccountHandle string          `json:"account_handle"`
	Recipient     string          `json:"recipient"`
	Policy        string          `json:"policy"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func mapTokenToResponse(token *schema.Token) TokenResponse {
	return TokenResponse{
		TokenID:       token.TokenID,
		Owner:         token.Owner,
		CreatorUserID: token.CreatorUserID,
		AccountHandle: token.AccountHandle,
		Redeemed:      token.Redeemed,
		MintTxHash:    token.MintTxHash,
		CreatedAt:     token.CreatedAt,
		UpdatedAt:     token.UpdatedAt,
	}
}

func mapRedemptionToResponse(record *schema.RedeemedRecord) RedemptionResponse {
	return RedemptionResponse{
		ID:                    record.ID,
		TokenID:               record.TokenID,
		CreatorUserID:         record.CreatorUserID,
		ExternalPublicationID: record.ExternalPublicationID,
		AccountHandle:         record.AccountHandle,
		Policy:                record.Policy,
		Content:               record.Content,
		TxHash:                record.TxHash,
		CreatedAt:             record.CreatedAt,
	}
}

func mapPendingMintToResponse(pendingMint *schema.PendingMint) PendingMintResponse {
	resp := PendingMintResponse{
		TxHash:        pendingMint.TxHash,
		CreatorUserID: pendingMint.CreatorUserID,
		AccountHandle: pendingMint.AccountHandle,
		Recipient:     pendingMint.Recipient,
		Policy:        pendingMint.Policy,
		CreatedAt:     pendingMint.CreatedAt,
	}
	if len(pendingMint.Metadata) > 0 {
		resp.Metadata = json.RawMessage(pendingMint.Metadata)
	}
	return resp
}
