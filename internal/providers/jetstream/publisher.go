package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
)

// duplicateWindow is how long JetStream remembers message ids for deduplication
const duplicateWindow = 10 * time.Minute

type publisher struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	subject string
	json    adapter.JSON
}

// NewPublisher connects to NATS, makes sure the log stream exists and creates a log publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{"logs.>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: duplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create/update stream: %w", err)
	}

	return &publisher{
		nc:      nc,
		js:      js,
		subject: LogSubject(cfg.ChainID, cfg.ContractAddress),
		json:    jsonAdapter,
	}, nil
}

// PublishLog publishes a contract log to NATS JetStream, using the log id as message id
// so a log re-published after a restart is dropped by the stream
func (p *publisher) PublishLog(ctx context.Context, log domain.RawLog) error {
	logger.Debug("Publishing contract log",
		zap.String("id", log.ID()),
		zap.Uint64("block", log.BlockNumber))

	data, err := p.json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(log.ID()))
	if err != nil {
		return fmt.Errorf("failed to publish log: %w", err)
	}

	if ack != nil && ack.Duplicate {
		logger.Debug("Contract log already published", zap.String("id", log.ID()))
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
