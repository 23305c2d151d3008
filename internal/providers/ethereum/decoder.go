package ethereum

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

// Decoder maps raw contract logs to typed domain events
//
//go:generate mockgen -source=decoder.go -destination=../../mocks/decoder.go -package=mocks -mock_names=Decoder=MockDecoder
type Decoder interface {
	// Decode returns one of the domain events for a log. Logs that do not belong to the
	// contract's known events decode to *domain.Unrecognized. A log carrying a known event
	// signature but a broken layout returns an error wrapping domain.ErrDecodeMismatch.
	Decode(log domain.RawLog) (domain.Event, error)
}

type decoder struct {
	contract common.Address
}

// NewDecoder creates a decoder for logs emitted by the given contract
func NewDecoder(contractAddress string) Decoder {
	return &decoder{contract: common.HexToAddress(contractAddress)}
}

// ToRawLog converts a go-ethereum log into the transport independent RawLog
func ToRawLog(vLog types.Log) domain.RawLog {
	return domain.RawLog{
		Address:     vLog.Address,
		Topics:      vLog.Topics,
		Data:        vLog.Data,
		TxHash:      vLog.TxHash,
		BlockNumber: vLog.BlockNumber,
		BlockHash:   vLog.BlockHash,
		TxIndex:     vLog.TxIndex,
		LogIndex:    vLog.Index,
		Removed:     vLog.Removed,
	}
}

func (d *decoder) Decode(log domain.RawLog) (domain.Event, error) {
	meta := domain.LogMeta{
		TxHash:      strings.ToLower(log.TxHash.Hex()),
		BlockNumber: log.BlockNumber,
		LogIndex:    log.LogIndex,
	}

	if log.Removed {
		return &domain.Unrecognized{Log: meta, Reason: "removed by reorg"}, nil
	}
	if log.Address != d.contract {
		return &domain.Unrecognized{Log: meta, Reason: "foreign contract " + log.Address.Hex()}, nil
	}
	if len(log.Topics) == 0 {
		return &domain.Unrecognized{Log: meta, Reason: "anonymous log"}, nil
	}

	switch log.Topics[0] {
	case newTokenDataEventSignature:
		return d.decodeNewTokenData(meta, log)
	case redeemTweetEventSignature:
		return d.decodeRedeemTweet(meta, log)
	case transferEventSignature:
		if len(log.Topics) == 3 {
			// ERC20 shape of the shared signature
			return &domain.Unrecognized{Log: meta, Reason: "erc20 transfer"}, nil
		}
		return d.decodeTransfer(meta, log)
	default:
		return &domain.Unrecognized{Log: meta, Reason: "unknown event signature " + log.Topics[0].Hex()}, nil
	}
}

// NewTokenData(uint256 indexed tokenId, address indexed to, uint256 xId, string policy)
func (d *decoder) decodeNewTokenData(meta domain.LogMeta, log domain.RawLog) (domain.Event, error) {
	if len(log.Topics) != 3 {
		return nil, mismatch(EventNewTokenData, "expected 3 topics, got %d", len(log.Topics))
	}

	tokenID, err := topicToTokenID(log.Topics[1])
	if err != nil {
		return nil, mismatch(EventNewTokenData, "%v", err)
	}

	if _, err := ContractABI.Unpack(EventNewTokenData, log.Data); err != nil {
		return nil, mismatch(EventNewTokenData, "failed to unpack data: %v", err)
	}

	recipient, err := topicToAddress(log.Topics[2])
	if err != nil {
		return nil, mismatch(EventNewTokenData, "to: %v", err)
	}

	return &domain.MintConfirmed{
		Log:       meta,
		TxHash:    meta.TxHash,
		TokenID:   tokenID,
		Recipient: recipient,
	}, nil
}

// RedeemTweet(uint256 indexed tokenId, uint256 xId, string content, string policy)
func (d *decoder) decodeRedeemTweet(meta domain.LogMeta, log domain.RawLog) (domain.Event, error) {
	if len(log.Topics) != 2 {
		return nil, mismatch(EventRedeemTweet, "expected 2 topics, got %d", len(log.Topics))
	}

	tokenID, err := topicToTokenID(log.Topics[1])
	if err != nil {
		return nil, mismatch(EventRedeemTweet, "%v", err)
	}

	values, err := ContractABI.Unpack(EventRedeemTweet, log.Data)
	if err != nil {
		return nil, mismatch(EventRedeemTweet, "failed to unpack data: %v", err)
	}
	if len(values) != 3 {
		return nil, mismatch(EventRedeemTweet, "expected 3 data fields, got %d", len(values))
	}

	xID, ok := values[0].(*big.Int)
	if !ok {
		return nil, mismatch(EventRedeemTweet, "xId is %T", values[0])
	}
	content, ok := values[1].(string)
	if !ok {
		return nil, mismatch(EventRedeemTweet, "content is %T", values[1])
	}
	policy, ok := values[2].(string)
	if !ok {
		return nil, mismatch(EventRedeemTweet, "policy is %T", values[2])
	}

	return &domain.RedemptionRequested{
		Log:        meta,
		TokenID:    tokenID,
		CreatorXID: xID.String(),
		Content:    content,
		Policy:     policy,
	}, nil
}

// Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
func (d *decoder) decodeTransfer(meta domain.LogMeta, log domain.RawLog) (domain.Event, error) {
	if len(log.Topics) != 4 {
		return nil, mismatch(EventTransfer, "expected 4 topics, got %d", len(log.Topics))
	}
	if len(log.Data) != 0 {
		return nil, mismatch(EventTransfer, "unexpected %d bytes of data", len(log.Data))
	}

	tokenID, err := topicToTokenID(log.Topics[3])
	if err != nil {
		return nil, mismatch(EventTransfer, "%v", err)
	}

	from, err := topicToAddress(log.Topics[1])
	if err != nil {
		return nil, mismatch(EventTransfer, "from: %v", err)
	}
	to, err := topicToAddress(log.Topics[2])
	if err != nil {
		return nil, mismatch(EventTransfer, "to: %v", err)
	}

	return &domain.OwnershipTransferred{
		Log:     meta,
		TokenID: tokenID,
		From:    from,
		To:      to,
	}, nil
}

func mismatch(event string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrDecodeMismatch, event, fmt.Sprintf(format, args...))
}

// topicToTokenID reads a uint256 token id. The index stores ids in a signed BIGINT column.
func topicToTokenID(topic common.Hash) (uint64, error) {
	id := new(big.Int).SetBytes(topic.Bytes())
	if !id.IsInt64() {
		return 0, fmt.Errorf("token id %s exceeds %d", id.String(), int64(math.MaxInt64))
	}
	return id.Uint64(), nil
}

// topicToAddress reads an indexed address, which occupies the low 20 bytes of the topic
func topicToAddress(topic common.Hash) (string, error) {
	for _, b := range topic[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return "", fmt.Errorf("topic %s is not a left-padded address", topic.Hex())
		}
	}
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex()), nil
}
