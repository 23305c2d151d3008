package schema

import (
	"time"
)

// User represents the users table. Users are created and linked to their social account
// outside of the indexer, the indexer only reads them and maintains RedemptionCount.
type User struct {
	// ID is the application-level user id
	ID string `gorm:"column:id;primaryKey;type:text"`
	// XID is the linked social account id, nil until the account is linked
	XID *string `gorm:"column:x_id;type:text;uniqueIndex"`
	// XHandle is the linked social account handle
	XHandle string `gorm:"column:x_handle;not null;default:'';type:text"`
	// AccessToken and AccessSecret are the social account credentials
	AccessToken  string `gorm:"column:access_token;not null;default:'';type:text"`
	AccessSecret string `gorm:"column:access_secret;not null;default:'';type:text"`
	// EmbeddedAddress is the user's chain address
	EmbeddedAddress string `gorm:"column:embedded_address;not null;default:'';type:text"`
	// SigningKey is the hex encoded private key of the user's embedded wallet
	SigningKey *string `gorm:"column:signing_key;type:text"`
	// RedemptionCount counts how many of the user's tokens have been redeemed
	RedemptionCount int64 `gorm:"column:redemption_count;not null;default:0"`
	// CreatedAt is the timestamp when the user was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
