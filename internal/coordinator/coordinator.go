package coordinator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/metrics"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/x"
	"github.com/teleport-xyz/teleport-indexer/internal/store/schema"
)

// ErrPublicationFailed wraps every failure of the social platform itself
var ErrPublicationFailed = errors.New("publication failed")

// UserResolver looks up the user linked to a social account
type UserResolver interface {
	GetUserByXID(ctx context.Context, xID string) (*schema.User, error)
}

// Publication is the result of publishing redeemed content
type Publication struct {
	UserID        string
	AccountHandle string
	Reference     string // external post id
}

// Coordinator owns the publish side effect of a redemption
//
//go:generate mockgen -source=coordinator.go -destination=../mocks/coordinator.go -package=mocks -mock_names=Coordinator=MockCoordinator
type Coordinator interface {
	// Publish resolves the creator linked to creatorXID and publishes content under their account.
	// Returns domain.ErrUserNotFound when no user is linked, an error wrapping ErrPublicationFailed
	// when the account cannot publish, and any other error when the user could not be read.
	Publish(ctx context.Context, creatorXID string, content string) (*Publication, error)
}

type coordinator struct {
	users  UserResolver
	client x.Client
}

// New creates a new side-effect coordinator
func New(users UserResolver, client x.Client) Coordinator {
	return &coordinator{users: users, client: client}
}

func (c *coordinator) Publish(ctx context.Context, creatorXID string, content string) (*Publication, error) {
	user, err := c.users.GetUserByXID(ctx, creatorXID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}
	if user == nil {
		metrics.ObservePublication(metrics.PublicationSkipped)
		return nil, fmt.Errorf("%w: x_id=%s", domain.ErrUserNotFound, creatorXID)
	}

	credentials := domain.AccountCredentials{
		AccessToken:  user.AccessToken,
		AccessSecret: user.AccessSecret,
	}

	postID, err := c.client.CreatePost(ctx, credentials, content)
	if err != nil {
		metrics.ObservePublication(metrics.PublicationFailed)
		return nil, fmt.Errorf("%w: user=%s: %w", ErrPublicationFailed, user.ID, err)
	}

	metrics.ObservePublication(metrics.PublicationSucceeded)
	logger.InfoCtx(ctx, "Redeemed content published",
		zap.String("userID", user.ID),
		zap.String("handle", user.XHandle),
		zap.String("postID", postID))

	return &Publication{
		UserID:        user.ID,
		AccountHandle: user.XHandle,
		Reference:     postID,
	}, nil
}
