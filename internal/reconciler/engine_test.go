package reconciler_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleport-xyz/teleport-indexer/internal/coordinator"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
	"github.com/teleport-xyz/teleport-indexer/internal/mocks"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/reconciler"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

const testContract = "0x36e7Fda8CC503D5Ec7729A42eb86EF02Af315Bf9"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEngineMocks contains all the mocks needed for testing the engine
type testEngineMocks struct {
	ctrl        *gomock.Controller
	subscriber  *mocks.MockSubscriber
	decoder     *mocks.MockDecoder
	store       *mocks.MockStore
	gate        *mocks.MockGate
	coordinator *mocks.MockCoordinator
	clock       *mocks.MockClock
	engine      reconciler.Engine
}

func defaultConfig() reconciler.Config {
	return reconciler.Config{
		ChainID:         domain.ChainEthereumSepolia,
		CursorSaveFreq:  10,
		CursorSaveDelay: 5 * time.Second,
	}
}

func setupTestEngine(t *testing.T, cfg reconciler.Config) *testEngineMocks {
	ctrl := gomock.NewController(t)

	tm := &testEngineMocks{
		ctrl:        ctrl,
		subscriber:  mocks.NewMockSubscriber(ctrl),
		decoder:     mocks.NewMockDecoder(ctrl),
		store:       mocks.NewMockStore(ctrl),
		gate:        mocks.NewMockGate(ctrl),
		coordinator: mocks.NewMockCoordinator(ctrl),
		clock:       mocks.NewMockClock(ctrl),
	}
	tm.engine = reconciler.NewEngine(cfg, tm.subscriber, tm.decoder, tm.store, tm.gate, tm.coordinator, tm.clock)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Duration(0)).AnyTimes()

	return tm
}

func redemption(tokenID uint64) *domain.RedemptionRequested {
	return &domain.RedemptionRequested{
		Log:        domain.LogMeta{TxHash: "0xredeem", BlockNumber: 20},
		TokenID:    tokenID,
		CreatorXID: "x1",
		Content:    "hello",
		Policy:     "p",
	}
}

func TestHandle_MintConfirmed_PromotesPendingMint(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	ctx := context.Background()
	tm.store.EXPECT().
		PromotePendingMint(ctx, store.PromotePendingMintInput{TxHash: "0xabc", TokenID: 42, Owner: "0xdead"}).
		Return(&schema.Token{TokenID: 42, Owner: "0xdead"}, nil)

	err := tm.engine.Handle(ctx, &domain.MintConfirmed{TxHash: "0xabc", TokenID: 42, Recipient: "0xdead"})
	assert.NoError(t, err)
}

func TestHandle_MintConfirmed_Replay(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	ctx := context.Background()
	event := &domain.MintConfirmed{TxHash: "0xabc", TokenID: 42, Recipient: "0xdead"}

	gomock.InOrder(
		tm.store.EXPECT().PromotePendingMint(ctx, gomock.Any()).
			Return(&schema.Token{TokenID: 42, Owner: "0xdead"}, nil),
		tm.store.EXPECT().PromotePendingMint(ctx, gomock.Any()).
			Return(nil, domain.ErrPendingMintNotFound),
	)

	require.NoError(t, tm.engine.Handle(ctx, event))
	require.NoError(t, tm.engine.Handle(ctx, event))
}

func TestHandle_MintConfirmed_TokenCollision(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.store.EXPECT().PromotePendingMint(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: token_id=42", domain.ErrTokenAlreadyExists))

	err := tm.engine.Handle(context.Background(), &domain.MintConfirmed{TxHash: "0xabc", TokenID: 42})
	assert.NoError(t, err)
}

func TestHandle_MintConfirmed_StoreError(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	dbErr := errors.New("connection refused")
	tm.store.EXPECT().PromotePendingMint(gomock.Any(), gomock.Any()).Return(nil, dbErr)

	err := tm.engine.Handle(context.Background(), &domain.MintConfirmed{TxHash: "0xabc", TokenID: 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestHandle_OwnershipTransferred(t *testing.T) {
	tests := []struct {
		name        string
		event       *domain.OwnershipTransferred
		setupMocks  func(*testEngineMocks)
		expectError bool
	}{
		{
			name:  "mint leg is ignored",
			event: &domain.OwnershipTransferred{TokenID: 42, From: domain.ETHEREUM_ZERO_ADDRESS, To: "0xdead"},
		},
		{
			name:  "transfer updates owner",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: "0xbeef"},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().TransferToken(gomock.Any(), uint64(42), "0xbeef").Return(nil)
			},
		},
		{
			name:  "transfer before mint is ignored",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: "0xbeef"},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().TransferToken(gomock.Any(), uint64(42), "0xbeef").
					Return(domain.ErrTokenNotFound)
			},
		},
		{
			name:  "transfer store error aborts",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: "0xbeef"},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().TransferToken(gomock.Any(), uint64(42), "0xbeef").
					Return(errors.New("timeout"))
			},
			expectError: true,
		},
		{
			name:  "burn deletes token",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: domain.ETHEREUM_ZERO_ADDRESS},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().BurnToken(gomock.Any(), uint64(42)).Return(nil)
			},
		},
		{
			name:  "burn of missing token is a no-op",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: domain.ETHEREUM_ZERO_ADDRESS},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().BurnToken(gomock.Any(), uint64(42)).Return(domain.ErrTokenNotFound)
			},
		},
		{
			name:  "burn store error aborts",
			event: &domain.OwnershipTransferred{TokenID: 42, From: "0xdead", To: domain.ETHEREUM_ZERO_ADDRESS},
			setupMocks: func(tm *testEngineMocks) {
				tm.store.EXPECT().BurnToken(gomock.Any(), uint64(42)).Return(errors.New("timeout"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestEngine(t, defaultConfig())
			defer tm.ctrl.Finish()

			if tt.setupMocks != nil {
				tt.setupMocks(tm)
			}

			err := tm.engine.Handle(context.Background(), tt.event)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandle_RedemptionRequested_Success(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	ctx := context.Background()
	gomock.InOrder(
		tm.gate.EXPECT().IsContentSafe(ctx, "hello", "p").Return(true, nil),
		tm.store.EXPECT().GetToken(ctx, uint64(42)).Return(&schema.Token{TokenID: 42, Owner: "0xdead"}, nil),
		tm.coordinator.EXPECT().Publish(ctx, "x1", "hello").
			Return(&coordinator.Publication{UserID: "u1", AccountHandle: "creator", Reference: "1799"}, nil),
		tm.store.EXPECT().FinalizeRedemption(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, in store.FinalizeRedemptionInput) (*schema.RedeemedRecord, error) {
				assert.NotEmpty(t, in.ID)
				assert.Equal(t, uint64(42), in.TokenID)
				assert.Equal(t, "1799", in.ExternalPublicationID)
				assert.Equal(t, "creator", in.AccountHandle)
				assert.Equal(t, "hello", in.Content)
				assert.Equal(t, "p", in.Policy)
				assert.Equal(t, "0xredeem", in.TxHash)
				return &schema.RedeemedRecord{ID: in.ID, TokenID: in.TokenID}, nil
			}),
	)

	assert.NoError(t, tm.engine.Handle(ctx, redemption(42)))
}

func TestHandle_RedemptionRequested_Unsafe(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	// No store or coordinator expectations: any call fails the test
	tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(false, nil)

	assert.NoError(t, tm.engine.Handle(context.Background(), redemption(42)))
}

func TestHandle_RedemptionRequested_GateError(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	gateErr := errors.New("oracle unavailable")
	tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(false, gateErr)

	err := tm.engine.Handle(context.Background(), redemption(42))
	require.Error(t, err)
	assert.ErrorIs(t, err, gateErr)
}

func TestHandle_RedemptionRequested_TokenAbsent(t *testing.T) {
	tests := []struct {
		name  string
		token *schema.Token
	}{
		{name: "burned or already redeemed", token: nil},
		{name: "flagged redeemed", token: &schema.Token{TokenID: 42, Redeemed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestEngine(t, defaultConfig())
			defer tm.ctrl.Finish()

			tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(true, nil)
			tm.store.EXPECT().GetToken(gomock.Any(), uint64(42)).Return(tt.token, nil)

			assert.NoError(t, tm.engine.Handle(context.Background(), redemption(42)))
		})
	}
}

func TestHandle_RedemptionRequested_Replay(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(true, nil).Times(2)
	gomock.InOrder(
		tm.store.EXPECT().GetToken(gomock.Any(), uint64(42)).Return(&schema.Token{TokenID: 42}, nil),
		tm.coordinator.EXPECT().Publish(gomock.Any(), "x1", "hello").
			Return(&coordinator.Publication{Reference: "1799"}, nil),
		tm.store.EXPECT().FinalizeRedemption(gomock.Any(), gomock.Any()).
			Return(&schema.RedeemedRecord{ID: "r1", TokenID: 42}, nil),
		// The token row is gone after finalization, the replay publishes nothing
		tm.store.EXPECT().GetToken(gomock.Any(), uint64(42)).Return(nil, nil),
	)

	require.NoError(t, tm.engine.Handle(context.Background(), redemption(42)))
	require.NoError(t, tm.engine.Handle(context.Background(), redemption(42)))
}

func TestHandle_RedemptionRequested_PublicationOutcomes(t *testing.T) {
	tests := []struct {
		name          string
		publishErr    error
		expectFinal   bool
		expectError   bool
		expectedEmpty bool
	}{
		{
			name:          "no linked user finalizes without reference",
			publishErr:    domain.ErrUserNotFound,
			expectFinal:   true,
			expectedEmpty: true,
		},
		{
			name:          "publication failure finalizes without reference",
			publishErr:    errors.Join(coordinator.ErrPublicationFailed, errors.New("403")),
			expectFinal:   true,
			expectedEmpty: true,
		},
		{
			name:        "user lookup failure aborts",
			publishErr:  errors.New("failed to resolve creator: connection reset"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestEngine(t, defaultConfig())
			defer tm.ctrl.Finish()

			tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(true, nil)
			tm.store.EXPECT().GetToken(gomock.Any(), uint64(42)).Return(&schema.Token{TokenID: 42}, nil)
			tm.coordinator.EXPECT().Publish(gomock.Any(), "x1", "hello").Return(nil, tt.publishErr)

			if tt.expectFinal {
				tm.store.EXPECT().FinalizeRedemption(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in store.FinalizeRedemptionInput) (*schema.RedeemedRecord, error) {
						if tt.expectedEmpty {
							assert.Empty(t, in.ExternalPublicationID)
						}
						return &schema.RedeemedRecord{ID: in.ID, TokenID: in.TokenID}, nil
					})
			}

			err := tm.engine.Handle(context.Background(), redemption(42))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandle_RedemptionRequested_FinalizeRace(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.gate.EXPECT().IsContentSafe(gomock.Any(), "hello", "p").Return(true, nil)
	tm.store.EXPECT().GetToken(gomock.Any(), uint64(42)).Return(&schema.Token{TokenID: 42}, nil)
	tm.coordinator.EXPECT().Publish(gomock.Any(), "x1", "hello").Return(&coordinator.Publication{Reference: "1"}, nil)
	tm.store.EXPECT().FinalizeRedemption(gomock.Any(), gomock.Any()).Return(nil, domain.ErrTokenNotFound)

	assert.NoError(t, tm.engine.Handle(context.Background(), redemption(42)))
}

func TestHandle_Unrecognized(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	assert.NoError(t, tm.engine.Handle(context.Background(), &domain.Unrecognized{Reason: "unknown event signature"}))
}

func TestHandleLog_WithDecoder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).Return(time.Duration(0)).AnyTimes()

	engine := reconciler.NewEngine(
		defaultConfig(),
		mocks.NewMockSubscriber(ctrl),
		ethereum.NewDecoder(testContract),
		st,
		mocks.NewMockGate(ctrl),
		mocks.NewMockCoordinator(ctrl),
		clock,
	)

	transferSig := ethereum.ContractABI.Events[ethereum.EventTransfer].ID
	newTokenDataSig := ethereum.ContractABI.Events[ethereum.EventNewTokenData].ID
	from := common.HexToAddress("0xdead")
	to := common.HexToAddress("0xbeef")

	transfer := domain.RawLog{
		Address: common.HexToAddress(testContract),
		Topics: []common.Hash{
			transferSig,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(42)),
		},
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 10,
	}

	t.Run("store failure does not halt ingestion", func(t *testing.T) {
		st.EXPECT().TransferToken(gomock.Any(), uint64(42), "0x000000000000000000000000000000000000beef").
			Return(errors.New("database is unreachable"))

		assert.NoError(t, engine.HandleLog(context.Background(), transfer))
	})

	t.Run("foreign contract is skipped", func(t *testing.T) {
		foreign := transfer
		foreign.Address = common.HexToAddress("0x01")

		assert.NoError(t, engine.HandleLog(context.Background(), foreign))
	})

	t.Run("layout mismatch halts ingestion", func(t *testing.T) {
		broken := domain.RawLog{
			Address: common.HexToAddress(testContract),
			Topics: []common.Hash{
				newTokenDataSig,
				common.BigToHash(big.NewInt(42)),
				common.BytesToHash(to.Bytes()),
			},
			Data:        []byte{0x01, 0x02},
			TxHash:      common.HexToHash("0x02"),
			BlockNumber: 11,
		}

		err := engine.HandleLog(context.Background(), broken)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDecodeMismatch)
	})
}

func TestRun_WithStartBlock(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartBlock = 1000
	cfg.CursorSaveFreq = 1
	tm := setupTestEngine(t, cfg)
	defer tm.ctrl.Finish()

	log := domain.RawLog{BlockNumber: 1001}
	event := &domain.Unrecognized{Reason: "unknown event signature"}

	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			require.NoError(t, handler(log))
			return context.Canceled
		})
	tm.decoder.EXPECT().Decode(log).Return(event, nil)
	tm.store.EXPECT().SetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia, uint64(1001)).Return(nil)

	err := tm.engine.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ResumesFromCursor(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia).Return(uint64(500), nil)
	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(500), gomock.Any()).
		Return(context.Canceled)

	err := tm.engine.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NoCursor(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia).Return(uint64(0), nil)
	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(0), gomock.Any()).
		Return(context.Canceled)

	err := tm.engine.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_CursorError(t *testing.T) {
	tm := setupTestEngine(t, defaultConfig())
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia).Return(uint64(0), errors.New("db down"))

	err := tm.engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get block cursor")
}

func TestRun_SavesCursorOnShutdown(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartBlock = 1
	cfg.CursorSaveFreq = 100
	tm := setupTestEngine(t, cfg)
	defer tm.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			for _, block := range []uint64{5, 6} {
				require.NoError(t, handler(domain.RawLog{BlockNumber: block}))
			}
			cancel()
			return ctx.Err()
		})
	tm.decoder.EXPECT().Decode(gomock.Any()).Return(&domain.Unrecognized{}, nil).Times(2)
	// Below the save frequency, so only the final flush writes the cursor
	tm.store.EXPECT().SetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia, uint64(6)).Return(nil)

	err := tm.engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InFlightEventSurvivesCancel(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartBlock = 1
	tm := setupTestEngine(t, cfg)
	defer tm.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := domain.RawLog{BlockNumber: 7}
	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			require.NoError(t, handler(log))
			return ctx.Err()
		})
	tm.decoder.EXPECT().Decode(log).
		Return(&domain.OwnershipTransferred{TokenID: 9, From: "0xdead", To: "0xbeef"}, nil)
	tm.store.EXPECT().TransferToken(gomock.Any(), uint64(9), "0xbeef").
		DoAndReturn(func(ctx context.Context, tokenID uint64, to string) error {
			// Shutdown arrives while the event is being applied
			cancel()
			assert.NoError(t, ctx.Err())
			return nil
		})
	tm.store.EXPECT().SetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia, uint64(7)).Return(nil)

	err := tm.engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_DecodeMismatchHalts(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartBlock = 1
	tm := setupTestEngine(t, cfg)
	defer tm.ctrl.Finish()

	log := domain.RawLog{BlockNumber: 3}
	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			return handler(log)
		})
	tm.decoder.EXPECT().Decode(log).Return(nil, domain.ErrDecodeMismatch)

	err := tm.engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecodeMismatch)
	assert.Contains(t, err.Error(), "ingestion halted")
}

func TestRun_RedeliveredOlderBlockKeepsCursor(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartBlock = 1
	cfg.CursorSaveFreq = 100
	tm := setupTestEngine(t, cfg)
	defer tm.ctrl.Finish()

	tm.subscriber.EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			for _, block := range []uint64{500, 400} {
				require.NoError(t, handler(domain.RawLog{BlockNumber: block}))
			}
			return context.Canceled
		})
	tm.decoder.EXPECT().Decode(gomock.Any()).Return(&domain.Unrecognized{}, nil).Times(2)
	// Only block 500 is saved, neither the older log nor the shutdown flush lowers it
	tm.store.EXPECT().SetBlockCursor(gomock.Any(), domain.CursorOwnerReconciler, domain.ChainEthereumSepolia, uint64(500)).Return(nil).Times(1)

	err := tm.engine.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}
