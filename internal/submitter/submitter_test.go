package submitter_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/mocks"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
	"github.com/teleport-xyz/teleport-indexer/internal/submitter"
)

const embeddedAddress = "0x36e7Fda8CC503D5Ec7729A42eb86EF02Af315Bf9"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type testSubmitterMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	transactor *mocks.MockContractTransactor
	submitter  submitter.Submitter
}

func newHexKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key))
}

func setupTestSubmitter(t *testing.T) *testSubmitterMocks {
	ctrl := gomock.NewController(t)
	tm := &testSubmitterMocks{
		ctrl:       ctrl,
		store:      mocks.NewMockStore(ctrl),
		transactor: mocks.NewMockContractTransactor(ctrl),
	}

	var err error
	tm.submitter, err = submitter.New(tm.store, tm.transactor, adapter.NewJSON(), newHexKey(t))
	require.NoError(t, err)
	return tm
}

func linkedUser(t *testing.T) *schema.User {
	xID := "4242"
	signingKey := newHexKey(t)
	return &schema.User{
		ID:              "user-1",
		XID:             &xID,
		XHandle:         "creator",
		EmbeddedAddress: embeddedAddress,
		SigningKey:      &signingKey,
	}
}

func testTx(nonce uint64) *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: nonce, GasPrice: big.NewInt(1), Gas: 21000})
}

func TestNew_InvalidMinterKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := submitter.New(mocks.NewMockStore(ctrl), mocks.NewMockContractTransactor(ctrl), adapter.NewJSON(), "0xnothex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid minter private key")
}

func TestSubmitMint_Success(t *testing.T) {
	tm := setupTestSubmitter(t)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	tx := testTx(1)
	txHash := strings.ToLower(tx.Hash().Hex())

	gomock.InOrder(
		tm.store.EXPECT().GetUserByID(ctx, "user-1").Return(linkedUser(t), nil),
		tm.transactor.EXPECT().
			Transact(ctx, gomock.Any(), ethereum.MethodMintTo, common.HexToAddress(embeddedAddress), big.NewInt(4242), "no-spam").
			Return(tx, nil),
		tm.store.EXPECT().CreatePendingMint(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, in store.CreatePendingMintInput) error {
				assert.Equal(t, txHash, in.TxHash)
				assert.Equal(t, "user-1", in.CreatorUserID)
				assert.Equal(t, "creator", in.AccountHandle)
				assert.Equal(t, "no-spam", in.Policy)
				assert.JSONEq(t, `{"x_id":"4242"}`, string(in.Metadata))
				return nil
			}),
		tm.transactor.EXPECT().WaitMined(ctx, tx).
			Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10)}, nil),
	)

	hash, err := tm.submitter.SubmitMint(ctx, submitter.MintRequest{UserID: "user-1", Policy: "no-spam"})
	require.NoError(t, err)
	assert.Equal(t, txHash, hash)
}

func TestSubmitMint_Reverted(t *testing.T) {
	tm := setupTestSubmitter(t)
	defer tm.ctrl.Finish()

	tx := testTx(2)
	tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(linkedUser(t), nil)
	tm.transactor.EXPECT().Transact(gomock.Any(), gomock.Any(), ethereum.MethodMintTo, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tx, nil)
	tm.store.EXPECT().CreatePendingMint(gomock.Any(), gomock.Any()).Return(nil)
	tm.transactor.EXPECT().WaitMined(gomock.Any(), tx).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(10)}, nil)

	hash, err := tm.submitter.SubmitMint(context.Background(), submitter.MintRequest{UserID: "user-1", Policy: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	assert.Equal(t, strings.ToLower(tx.Hash().Hex()), hash)
}

func TestSubmitMint_Errors(t *testing.T) {
	sendErr := errors.New("insufficient funds for gas")

	tests := []struct {
		name        string
		setupMocks  func(*testing.T, *testSubmitterMocks)
		expectIs    error
		expectError string
	}{
		{
			name: "unknown user",
			setupMocks: func(t *testing.T, tm *testSubmitterMocks) {
				tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(nil, nil)
			},
			expectIs: domain.ErrUserNotFound,
		},
		{
			name: "account not linked",
			setupMocks: func(t *testing.T, tm *testSubmitterMocks) {
				user := linkedUser(t)
				user.XID = nil
				tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(user, nil)
			},
			expectIs: domain.ErrAccountNotLinked,
		},
		{
			name: "no embedded address",
			setupMocks: func(t *testing.T, tm *testSubmitterMocks) {
				user := linkedUser(t)
				user.EmbeddedAddress = ""
				tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(user, nil)
			},
			expectError: "no valid embedded address",
		},
		{
			name: "send failure leaves no pending mint",
			setupMocks: func(t *testing.T, tm *testSubmitterMocks) {
				tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(linkedUser(t), nil)
				tm.transactor.EXPECT().
					Transact(gomock.Any(), gomock.Any(), ethereum.MethodMintTo, gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, sendErr)
			},
			expectIs: sendErr,
		},
		{
			name: "pending mint not recorded",
			setupMocks: func(t *testing.T, tm *testSubmitterMocks) {
				tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(linkedUser(t), nil)
				tm.transactor.EXPECT().
					Transact(gomock.Any(), gomock.Any(), ethereum.MethodMintTo, gomock.Any(), gomock.Any(), gomock.Any()).
					Return(testTx(3), nil)
				tm.store.EXPECT().CreatePendingMint(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			expectError: "failed to record pending mint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestSubmitter(t)
			defer tm.ctrl.Finish()

			tt.setupMocks(t, tm)

			_, err := tm.submitter.SubmitMint(context.Background(), submitter.MintRequest{UserID: "user-1", Policy: "p"})
			require.Error(t, err)
			if tt.expectIs != nil {
				assert.ErrorIs(t, err, tt.expectIs)
			}
			if tt.expectError != "" {
				assert.Contains(t, err.Error(), tt.expectError)
			}
		})
	}
}

func TestSubmitRedeem_Success(t *testing.T) {
	tm := setupTestSubmitter(t)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	user := linkedUser(t)
	userKey, err := crypto.HexToECDSA(strings.TrimPrefix(*user.SigningKey, "0x"))
	require.NoError(t, err)

	tx := testTx(4)
	tm.store.EXPECT().GetUserByID(ctx, "user-1").Return(user, nil)
	tm.transactor.EXPECT().
		Transact(ctx, gomock.Any(), ethereum.MethodRedeem, big.NewInt(42), "gm", uint8(0)).
		DoAndReturn(func(_ context.Context, key *ecdsa.PrivateKey, _ string, _ ...interface{}) (*types.Transaction, error) {
			// Redemptions are signed by the token holder, not the minter
			assert.Equal(t, crypto.PubkeyToAddress(userKey.PublicKey), crypto.PubkeyToAddress(key.PublicKey))
			return tx, nil
		})
	tm.transactor.EXPECT().WaitMined(ctx, tx).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	hash, err := tm.submitter.SubmitRedeem(ctx, submitter.RedeemRequest{UserID: "user-1", TokenID: 42, Content: "gm"})
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(tx.Hash().Hex()), hash)
}

func TestSubmitRedeem_Errors(t *testing.T) {
	t.Run("missing signing key", func(t *testing.T) {
		tm := setupTestSubmitter(t)
		defer tm.ctrl.Finish()

		user := linkedUser(t)
		user.SigningKey = nil
		tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(user, nil)

		_, err := tm.submitter.SubmitRedeem(context.Background(), submitter.RedeemRequest{UserID: "user-1", TokenID: 1})
		assert.ErrorIs(t, err, submitter.ErrSigningKeyMissing)
	})

	t.Run("wait failure returns the hash", func(t *testing.T) {
		tm := setupTestSubmitter(t)
		defer tm.ctrl.Finish()

		tx := testTx(5)
		tm.store.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(linkedUser(t), nil)
		tm.transactor.EXPECT().Transact(gomock.Any(), gomock.Any(), ethereum.MethodRedeem, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(tx, nil)
		tm.transactor.EXPECT().WaitMined(gomock.Any(), tx).Return(nil, context.DeadlineExceeded)

		hash, err := tm.submitter.SubmitRedeem(context.Background(), submitter.RedeemRequest{UserID: "user-1", TokenID: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, strings.ToLower(tx.Hash().Hex()), hash)
	})
}

func TestSubmitMint_MetadataEncodingError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	transactor := mocks.NewMockContractTransactor(ctrl)
	json := mocks.NewMockJSON(ctrl)

	s, err := submitter.New(st, transactor, json, newHexKey(t))
	require.NoError(t, err)

	tx := testTx(6)
	st.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(linkedUser(t), nil)
	transactor.EXPECT().Transact(gomock.Any(), gomock.Any(), ethereum.MethodMintTo, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tx, nil)
	json.EXPECT().Marshal(map[string]string{"x_id": "4242"}).Return(nil, errors.New("boom"))

	// The transaction is already sent, its hash is still reported
	hash, err := s.SubmitMint(context.Background(), submitter.MintRequest{UserID: "user-1", Policy: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode pending mint metadata")
	assert.Equal(t, strings.ToLower(tx.Hash().Hex()), hash)
}
