package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseMainnet     Chain = "eip155:8453"
	ChainBaseSepolia     Chain = "eip155:84532"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia ||
		chain == ChainBaseMainnet ||
		chain == ChainBaseSepolia
}

// EVMChainID returns the numeric EIP-155 chain id of an eip155 chain
func (c Chain) EVMChainID() (*big.Int, error) {
	reference, ok := strings.CutPrefix(string(c), "eip155:")
	if !ok {
		return nil, fmt.Errorf("chain %s is not an eip155 chain", c)
	}
	id, ok := new(big.Int).SetString(reference, 10)
	if !ok {
		return nil, fmt.Errorf("invalid chain reference %q", reference)
	}
	return id, nil
}

// EventType represents the type of a decoded contract event
type EventType string

const (
	EventTypeMintConfirmed        EventType = "mint_confirmed"
	EventTypeRedemptionRequested  EventType = "redemption_requested"
	EventTypeOwnershipTransferred EventType = "ownership_transferred"
	EventTypeUnrecognized         EventType = "unrecognized"
)

// RawLog is a contract log entry as delivered by the chain node.
// This is the format published to NATS by the log emitter.
type RawLog struct {
	Address     common.Address `json:"address"`      // emitting contract
	Topics      []common.Hash  `json:"topics"`       // indexed topics, first is the event signature
	Data        hexutil.Bytes  `json:"data"`         // ABI encoded non-indexed fields
	TxHash      common.Hash    `json:"tx_hash"`      // transaction hash
	BlockNumber uint64         `json:"block_number"` // block number
	BlockHash   common.Hash    `json:"block_hash"`   // block hash
	TxIndex     uint           `json:"tx_index"`     // transaction index in the block
	LogIndex    uint           `json:"log_index"`    // log index in the block
	Removed     bool           `json:"removed"`      // true when the log was reverted by a reorg
}

// ID returns the identifier of the log, unique per chain
func (l *RawLog) ID() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(l.TxHash.Hex()), l.LogIndex)
}

// LogMeta carries the position of the log an event was decoded from
type LogMeta struct {
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
}

// Event is one of the closed set of decoded contract events:
// MintConfirmed, RedemptionRequested, OwnershipTransferred or Unrecognized
type Event interface {
	Type() EventType
	Meta() LogMeta
	isEvent()
}

// MintConfirmed is emitted when a minted token is confirmed on-chain
type MintConfirmed struct {
	Log       LogMeta
	TxHash    string // hash of the mint transaction, lowercase hex
	TokenID   uint64
	Recipient string // lowercase hex
}

// RedemptionRequested is emitted when a holder redeems a token for content publication
type RedemptionRequested struct {
	Log        LogMeta
	TokenID    uint64
	CreatorXID string
	Content    string
	Policy     string
}

// OwnershipTransferred is the ERC721 Transfer event
type OwnershipTransferred struct {
	Log     LogMeta
	TokenID uint64
	From    string // lowercase hex
	To      string // lowercase hex
}

// Unrecognized is any log that does not belong to the known contract events
type Unrecognized struct {
	Log    LogMeta
	Reason string
}

func (e *MintConfirmed) Type() EventType        { return EventTypeMintConfirmed }
func (e *RedemptionRequested) Type() EventType  { return EventTypeRedemptionRequested }
func (e *OwnershipTransferred) Type() EventType { return EventTypeOwnershipTransferred }
func (e *Unrecognized) Type() EventType         { return EventTypeUnrecognized }

func (e *MintConfirmed) Meta() LogMeta        { return e.Log }
func (e *RedemptionRequested) Meta() LogMeta  { return e.Log }
func (e *OwnershipTransferred) Meta() LogMeta { return e.Log }
func (e *Unrecognized) Meta() LogMeta         { return e.Log }

func (*MintConfirmed) isEvent()        {}
func (*RedemptionRequested) isEvent()  {}
func (*OwnershipTransferred) isEvent() {}
func (*Unrecognized) isEvent()         {}

// IsMint reports whether the transfer is the mint leg (from the zero address)
func (e *OwnershipTransferred) IsMint() bool {
	return IsZeroAddress(e.From)
}

// IsBurn reports whether the transfer destroys the token (to the zero address)
func (e *OwnershipTransferred) IsBurn() bool {
	return IsZeroAddress(e.To)
}

// AccountCredentials are the social account credentials used to publish on behalf of a user
type AccountCredentials struct {
	AccessToken  string
	AccessSecret string
}

// Valid reports whether both parts of the credentials are present
func (c AccountCredentials) Valid() bool {
	return c.AccessToken != "" && c.AccessSecret != ""
}

// IsZeroAddress checks if an address is empty or the zero address
func IsZeroAddress(address string) bool {
	return address == "" || NormalizeAddress(address) == ETHEREUM_ZERO_ADDRESS
}

// NormalizeAddress normalizes an address to lowercase hex
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}

// NormalizeTxHash normalizes a transaction hash to lowercase hex with 0x prefix
func NormalizeTxHash(hash string) string {
	return strings.ToLower(common.HexToHash(hash).Hex())
}

// CursorOwner names the process a block cursor belongs to
type CursorOwner string

const (
	CursorOwnerReconciler CursorOwner = "reconciler"
	CursorOwnerEmitter    CursorOwner = "log-emitter"
)

// BlockCursorKey returns the key-value store key holding the block cursor of an owner on a chain
func BlockCursorKey(owner CursorOwner, chain Chain) string {
	return BLOCK_CURSOR_KEY_PREFIX + string(owner) + ":" + string(chain)
}
