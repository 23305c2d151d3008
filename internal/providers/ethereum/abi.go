package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Event and method names of the Teleport NFT contract
const (
	EventNewTokenData = "NewTokenData"
	EventRedeemTweet  = "RedeemTweet"
	EventTransfer     = "Transfer"

	MethodMintTo = "mintTo"
	MethodRedeem = "redeem"
)

// contractABIJSON is the subset of the Teleport NFT contract ABI the indexer understands
const contractABIJSON = `[
	{
		"anonymous": false,
		"type": "event",
		"name": "NewTokenData",
		"inputs": [
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "xId", "type": "uint256"},
			{"indexed": false, "name": "policy", "type": "string"}
		]
	},
	{
		"anonymous": false,
		"type": "event",
		"name": "RedeemTweet",
		"inputs": [
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "xId", "type": "uint256"},
			{"indexed": false, "name": "content", "type": "string"},
			{"indexed": false, "name": "policy", "type": "string"}
		]
	},
	{
		"anonymous": false,
		"type": "event",
		"name": "Transfer",
		"inputs": [
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": true, "name": "tokenId", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "mintTo",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "xId", "type": "uint256"},
			{"name": "policy", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "redeem",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "tokenId", "type": "uint256"},
			{"name": "content", "type": "string"},
			{"name": "mode", "type": "uint8"}
		],
		"outputs": []
	}
]`

// ContractABI is the parsed Teleport NFT contract ABI
var ContractABI = mustParseABI(contractABIJSON)

// Event signatures (topic 0)
var (
	newTokenDataEventSignature = ContractABI.Events[EventNewTokenData].ID
	redeemTweetEventSignature  = ContractABI.Events[EventRedeemTweet].ID

	// Transfer is shared by ERC20 and ERC721
	// ERC20: Transfer(address indexed from, address indexed to, uint256 value) - 3 topics
	// ERC721: Transfer(address indexed from, address indexed to, uint256 indexed tokenId) - 4 topics
	transferEventSignature = ContractABI.Events[EventTransfer].ID
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
