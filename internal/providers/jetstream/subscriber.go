package jetstream

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
)

type subscriber struct {
	nc        adapter.NatsConn
	js        adapter.JetStream
	json      adapter.JSON
	config    Config
	lastBlock atomic.Uint64
}

// NewSubscriber connects to NATS and creates a subscriber reading contract logs
// from the durable consumer of the log stream
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Subscriber, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		nc:     nc,
		js:     js,
		json:   jsonAdapter,
		config: cfg,
	}, nil
}

// SubscribeLogs consumes the log stream in order. Only one message is in flight at a time
// and it is acked after the handler returns, so a crash redelivers the in-flight log.
// Logs below fromBlock are acked without being handled.
func (s *subscriber) SubscribeLogs(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
	subject := LogSubject(s.config.ChainID, s.config.ContractAddress)
	logger.InfoCtx(ctx, "Starting log consumer",
		zap.String("stream", s.config.StreamName),
		zap.String("consumer", s.config.ConsumerName),
		zap.String("subject", subject))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       s.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.config.AckWait,
		MaxDeliver:    s.config.MaxDeliver,
		MaxAckPending: 1,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: subject,
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("%w: failed to create/update consumer: %v", domain.ErrSubscriptionFailed, err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get consumer info: %v", domain.ErrSubscriptionFailed, err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved",
		zap.String("consumer", consumerInfo.Name),
		zap.Uint64("pending", consumerInfo.NumPending))

	msgChan := make(chan adapter.Message, 1)
	consumeCtx, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("%w: failed to consume: %v", domain.ErrSubscriptionFailed, err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Stopping log consumer")
			return ctx.Err()
		case <-consumeCtx.Closed():
			return fmt.Errorf("%w: consumer closed", domain.ErrSubscriptionFailed)
		case msg := <-msgChan:
			if err := s.handleMessage(ctx, msg, fromBlock, handler); err != nil {
				return err
			}
		}
	}
}

// handleMessage decodes and hands a single message to the handler.
// Only a handler error is returned, everything else is settled on the message.
func (s *subscriber) handleMessage(ctx context.Context, msg adapter.Message, fromBlock uint64, handler messaging.LogHandler) error {
	var log domain.RawLog
	if err := s.json.Unmarshal(msg.Data(), &log); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal contract log"))
		// Unparseable data will never succeed
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return nil
	}

	if metadata, err := msg.Metadata(); err == nil && metadata.NumDelivered > 1 {
		logger.WarnCtx(ctx, "Contract log redelivered",
			zap.String("id", log.ID()),
			zap.Uint64("deliveryCount", metadata.NumDelivered))
	}

	if log.BlockNumber >= fromBlock {
		if err := handler(log); err != nil {
			if err := msg.Nak(); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
			}
			return err
		}
		s.lastBlock.Store(log.BlockNumber)
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}

	return nil
}

// GetLatestBlock returns the block of the last log handled through the stream.
// The stream has no view of the chain head.
func (s *subscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	return s.lastBlock.Load(), nil
}

// Close closes the NATS connection
func (s *subscriber) Close() {
	if s.nc == nil {
		return
	}

	s.nc.Close()
}
