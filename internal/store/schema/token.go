package schema

import (
	"time"
)

// Token represents the nft_index table - the live ownership index of the contract's tokens.
// A row exists only while the token is owned: burned and redeemed tokens are removed.
type Token struct {
	// TokenID is the contract-assigned token id
	TokenID uint64 `gorm:"column:token_id;primaryKey;autoIncrement:false;type:bigint"`
	// Owner is the current owner's address, lowercase hex
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// CreatorUserID is the application user that minted the token
	CreatorUserID string `gorm:"column:creator_user_id;not null;type:text;index"`
	// AccountHandle is the creator's social account handle at mint time
	AccountHandle string `gorm:"column:account_handle;not null;default:'';type:text"`
	// Redeemed only ever moves from false to true
	Redeemed bool `gorm:"column:redeemed;not null;default:false"`
	// MintTxHash is the transaction that minted the token
	MintTxHash string `gorm:"column:mint_tx_hash;not null;type:text"`
	// CreatedAt is the timestamp when the token was promoted from a pending mint
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp of the last ownership change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "nft_index"
}
