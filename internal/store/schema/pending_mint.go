package schema

import (
	"time"

	"gorm.io/datatypes"
)

// PendingMint represents the pending_mints table - mint transactions submitted but not yet
// confirmed by the contract. A row is deleted when it is promoted into a Token.
type PendingMint struct {
	// TxHash is the hash of the mint submission transaction, lowercase hex
	TxHash string `gorm:"column:tx_hash;primaryKey;type:text"`
	// CreatorUserID is the application user that requested the mint
	CreatorUserID string `gorm:"column:creator_user_id;not null;type:text"`
	// AccountHandle is the creator's social account handle
	AccountHandle string `gorm:"column:account_handle;not null;default:'';type:text"`
	// Recipient is the intended owner of the minted token, lowercase hex
	Recipient string `gorm:"column:recipient;not null;type:text"`
	// Policy is the safety policy the token was minted with
	Policy string `gorm:"column:policy;not null;default:'';type:text"`
	// Metadata holds free-form recipient metadata supplied by the submitter
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// CreatedAt is the timestamp when the mint was submitted
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the PendingMint model
func (PendingMint) TableName() string {
	return "pending_mints"
}
