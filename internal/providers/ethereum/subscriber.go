package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
)

// Config holds the configuration for Ethereum subscription
type Config struct {
	WebSocketURL     string       // WebSocket URL (e.g., wss://mainnet.infura.io/ws/v3/YOUR_PROJECT_ID)
	ChainID          domain.Chain // e.g., "eip155:1" for Ethereum mainnet
	ContractAddress  string       // contract whose logs are followed
	ReconnectWait    time.Duration
	MaxReconnectWait time.Duration
}

type ethSubscriber struct {
	mu       sync.Mutex
	client   adapter.EthClient
	dialer   adapter.EthClientDialer
	config   Config
	contract common.Address
}

// handlerError marks a failure returned by the log handler, which ends the subscription
type handlerError struct {
	err error
}

func (e *handlerError) Error() string { return e.err.Error() }
func (e *handlerError) Unwrap() error { return e.err }

// NewSubscriber dials the websocket endpoint and creates a new contract log subscriber
func NewSubscriber(ctx context.Context, cfg Config, dialer adapter.EthClientDialer) (messaging.Subscriber, error) {
	client, err := dialer.Dial(ctx, cfg.WebSocketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum websocket: %w", err)
	}

	return &ethSubscriber{
		client:   client,
		dialer:   dialer,
		config:   cfg,
		contract: common.HexToAddress(cfg.ContractAddress),
	}, nil
}

// SubscribeLogs follows the contract logs. A dropped subscription is re-established with
// exponential backoff, resuming from the block of the last delivered log so that log is
// delivered again. A handler error ends the subscription and is returned.
func (s *ethSubscriber) SubscribeLogs(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
	next := fromBlock

	for {
		err := s.follow(ctx, &next, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var herr *handlerError
		if errors.As(err, &herr) {
			return herr.err
		}

		logger.WarnCtx(ctx, "Ethereum log subscription dropped, reconnecting",
			zap.Error(err),
			zap.String("chain", string(s.config.ChainID)),
			zap.Uint64("resumeBlock", next))

		if err := s.reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// follow runs a single subscription until it fails, the handler fails or ctx is done.
// next is advanced to the block of every delivered log.
func (s *ethSubscriber) follow(ctx context.Context, next *uint64, handler messaging.LogHandler) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{s.contract},
	}
	if *next > 0 {
		query.FromBlock = new(big.Int).SetUint64(*next)
	}

	logs := make(chan types.Log)
	sub, err := s.currentClient().SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from contract logs")
		sub.Unsubscribe()
	}()

	logger.InfoCtx(ctx, "Subscribed to contract logs",
		zap.String("contract", s.contract.Hex()),
		zap.Uint64("fromBlock", *next))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
		case vLog := <-logs:
			if err := handler(ToRawLog(vLog)); err != nil {
				return &handlerError{err: err}
			}
			*next = vLog.BlockNumber
		}
	}
}

// reconnect closes the current client and dials a new one with exponential backoff
func (s *ethSubscriber) reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.mu.Unlock()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.ReconnectWait
	b.MaxInterval = s.config.MaxReconnectWait
	b.MaxElapsedTime = 0 // keep trying until the context is cancelled

	operation := func() error {
		client, err := s.dialer.Dial(ctx, s.config.WebSocketURL)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.client = client
		s.mu.Unlock()
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Failed to dial ethereum websocket, retrying",
			zap.Error(err),
			zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("%w: failed to reconnect: %v", domain.ErrSubscriptionFailed, err)
	}

	logger.InfoCtx(ctx, "Reconnected to ethereum websocket")
	return nil
}

func (s *ethSubscriber) currentClient() adapter.EthClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// GetLatestBlock returns the latest block number
func (s *ethSubscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	client := s.currentClient()
	if client == nil {
		return 0, fmt.Errorf("%w: not connected", domain.ErrSubscriptionFailed)
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// Close closes the connection
func (s *ethSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return
	}

	s.client.Close()
	s.client = nil
	logger.Info("Ethereum WebSocket connection closed")
}
