package schema

import (
	"time"
)

// RedeemedRecord represents the redeemed_index table - the append-only log of redeemed content.
// Exactly one record exists per redeemed token.
type RedeemedRecord struct {
	// ID is a ULID generated at redemption time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CreatorUserID is the application user that minted the token
	CreatorUserID string `gorm:"column:creator_user_id;not null;type:text;index"`
	// TokenID is the redeemed token
	TokenID uint64 `gorm:"column:token_id;not null;type:bigint;uniqueIndex"`
	// ExternalPublicationID is the social post id, empty when publication did not happen
	ExternalPublicationID string `gorm:"column:external_publication_id;not null;default:'';type:text"`
	// AccountHandle is the social account the content was published under
	AccountHandle string `gorm:"column:account_handle;not null;default:'';type:text"`
	// Policy is the safety policy supplied by the redeemer
	Policy string `gorm:"column:policy;not null;default:'';type:text"`
	// Content is the raw redeemed text
	Content string `gorm:"column:content;not null;type:text"`
	// TxHash is the transaction that requested the redemption
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// CreatedAt is the timestamp when the redemption was finalized
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the RedeemedRecord model
func (RedeemedRecord) TableName() string {
	return "redeemed_index"
}
