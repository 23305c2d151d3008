package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/config"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
	"github.com/teleport-xyz/teleport-indexer/internal/submitter"
)

// rootOptions holds global flags for all commands
type rootOptions struct {
	configFile string
	envPath    string
	timeout    time.Duration

	cfg *config.SubmitterConfig
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "teleportctl",
		Short: "Operate the Teleport contract and indexer",
		Long:  "Submit mint and redeem transactions to the Teleport contract and inspect indexer cursors.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.ChdirRepoRoot()
			cfg, err := config.LoadSubmitterConfig(opts.configFile, opts.envPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg

			return logger.Initialize(logger.Config{
				Debug:           cfg.Debug,
				SentryDSN:       cfg.SentryDSN,
				BreadcrumbLevel: zapcore.InfoLevel,
				Service:         "teleportctl",
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Flush(2 * time.Second)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "config/", "path to environment files")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "how long to wait for a transaction to be included")

	cmd.AddCommand(newMintCommand(opts))
	cmd.AddCommand(newRedeemCommand(opts))
	cmd.AddCommand(newCursorCommand(opts))

	return cmd
}

// openStore connects to the index database
func (o *rootOptions) openStore() (store.Store, error) {
	db, err := gorm.Open(postgres.Open(o.cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store.NewPGStore(db), nil
}

// newSubmitter dials the chain node and binds the contract. The returned func closes the connection.
func (o *rootOptions) newSubmitter(ctx context.Context) (submitter.Submitter, func(), error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}

	chainID, err := o.cfg.Ethereum.ChainID.EVMChainID()
	if err != nil {
		return nil, nil, err
	}

	rpcURL := o.cfg.Ethereum.RPCURL
	if rpcURL == "" {
		rpcURL = o.cfg.Ethereum.WebSocketURL
	}
	if rpcURL == "" {
		return nil, nil, fmt.Errorf("ethereum.rpc_url is required")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial ethereum node: %w", err)
	}

	transactor := adapter.NewContractTransactor(
		client,
		common.HexToAddress(o.cfg.Ethereum.ContractAddress),
		ethereum.ContractABI,
		chainID,
	)

	s, err := submitter.New(st, transactor, adapter.NewJSON(), o.cfg.Ethereum.MinterPrivateKey)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return s, client.Close, nil
}
