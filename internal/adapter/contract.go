package adapter

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractBackend is the chain client needed to send contract calls and wait for receipts.
// *ethclient.Client satisfies it.
type ContractBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ContractTransactor defines an interface for signed contract calls to enable mocking
//
//go:generate mockgen -destination=../mocks/contract.go -package=mocks github.com/teleport-xyz/teleport-indexer/internal/adapter ContractTransactor
type ContractTransactor interface {
	// Transact signs the call with key and sends it, returning the pending transaction
	Transact(ctx context.Context, key *ecdsa.PrivateKey, method string, params ...interface{}) (*types.Transaction, error)
	// WaitMined blocks until the transaction is included and returns its receipt
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// BoundContractTransactor implements ContractTransactor with go-ethereum's bound contract
type BoundContractTransactor struct {
	backend  ContractBackend
	contract *bind.BoundContract
	chainID  *big.Int
}

// NewContractTransactor binds contractABI at address on the given backend
func NewContractTransactor(backend ContractBackend, address common.Address, contractABI abi.ABI, chainID *big.Int) ContractTransactor {
	return &BoundContractTransactor{
		backend:  backend,
		contract: bind.NewBoundContract(address, contractABI, backend, backend, backend),
		chainID:  chainID,
	}
}

func (c *BoundContractTransactor) Transact(ctx context.Context, key *ecdsa.PrivateKey, method string, params ...interface{}) (*types.Transaction, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	return c.contract.Transact(opts, method, params...)
}

func (c *BoundContractTransactor) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.backend, tx)
}
