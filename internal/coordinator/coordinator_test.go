package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleport-xyz/teleport-indexer/internal/coordinator"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/mocks"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

type testCoordinatorMocks struct {
	ctrl   *gomock.Controller
	users  *mocks.MockUserResolver
	client *mocks.MockXClient
	coord  coordinator.Coordinator
}

func setupTestCoordinator(t *testing.T) *testCoordinatorMocks {
	ctrl := gomock.NewController(t)
	tm := &testCoordinatorMocks{
		ctrl:   ctrl,
		users:  mocks.NewMockUserResolver(ctrl),
		client: mocks.NewMockXClient(ctrl),
	}
	tm.coord = coordinator.New(tm.users, tm.client)
	return tm
}

func linkedUser() *schema.User {
	xID := "4242"
	return &schema.User{
		ID:           "user-1",
		XID:          &xID,
		XHandle:      "creator",
		AccessToken:  "at",
		AccessSecret: "as",
	}
}

func TestPublish_Success(t *testing.T) {
	tm := setupTestCoordinator(t)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	tm.users.EXPECT().GetUserByXID(ctx, "4242").Return(linkedUser(), nil)
	tm.client.EXPECT().
		CreatePost(ctx, domain.AccountCredentials{AccessToken: "at", AccessSecret: "as"}, "gm").
		Return("1799", nil)

	publication, err := tm.coord.Publish(ctx, "4242", "gm")
	require.NoError(t, err)
	assert.Equal(t, &coordinator.Publication{UserID: "user-1", AccountHandle: "creator", Reference: "1799"}, publication)
}

func TestPublish_UserNotFound(t *testing.T) {
	tm := setupTestCoordinator(t)
	defer tm.ctrl.Finish()

	tm.users.EXPECT().GetUserByXID(gomock.Any(), "4242").Return(nil, nil)

	publication, err := tm.coord.Publish(context.Background(), "4242", "gm")
	assert.Nil(t, publication)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPublish_StoreError(t *testing.T) {
	tm := setupTestCoordinator(t)
	defer tm.ctrl.Finish()

	dbErr := errors.New("connection reset")
	tm.users.EXPECT().GetUserByXID(gomock.Any(), "4242").Return(nil, dbErr)

	_, err := tm.coord.Publish(context.Background(), "4242", "gm")
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, errors.Is(err, coordinator.ErrPublicationFailed))
	assert.False(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestPublish_PlatformError(t *testing.T) {
	tm := setupTestCoordinator(t)
	defer tm.ctrl.Finish()

	tm.users.EXPECT().GetUserByXID(gomock.Any(), "4242").Return(linkedUser(), nil)
	tm.client.EXPECT().CreatePost(gomock.Any(), gomock.Any(), "gm").Return("", domain.ErrAccountNotLinked)

	_, err := tm.coord.Publish(context.Background(), "4242", "gm")
	assert.ErrorIs(t, err, coordinator.ErrPublicationFailed)
	assert.ErrorIs(t, err, domain.ErrAccountNotLinked)
}
