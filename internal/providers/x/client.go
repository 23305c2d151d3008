package x

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
)

// DefaultAPIURL is the X API base URL
const DefaultAPIURL = "https://api.twitter.com"

// Config holds the X application credentials
type Config struct {
	APIURL         string
	ConsumerKey    string
	ConsumerSecret string
	HTTPTimeout    time.Duration
	Retry          adapter.RetryConfig
}

// Client publishes posts on behalf of users through the X API v2
//
//go:generate mockgen -source=client.go -destination=../../mocks/x_client.go -package=mocks -mock_names=Client=MockXClient
type Client interface {
	// CreatePost publishes text with the user's credentials and returns the post id
	CreatePost(ctx context.Context, credentials domain.AccountCredentials, text string) (string, error)
}

type createPostRequest struct {
	Text string `json:"text"`
}

type createPostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type client struct {
	config      Config
	oauthConfig *oauth1.Config
	base        *http.Client
}

// NewClient creates a new X API client
func NewClient(cfg Config) Client {
	return NewClientWithHTTPClient(cfg, &http.Client{})
}

// NewClientWithHTTPClient creates a new X API client whose signed requests go through base's transport
func NewClientWithHTTPClient(cfg Config, base *http.Client) Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Retry == (adapter.RetryConfig{}) {
		cfg.Retry = adapter.DefaultRetryConfig()
	}

	return &client{
		config:      cfg,
		oauthConfig: oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret),
		base:        base,
	}
}

// CreatePost publishes a post through POST /2/tweets, signed with OAuth 1.0a user context
func (c *client) CreatePost(ctx context.Context, credentials domain.AccountCredentials, text string) (string, error) {
	if !credentials.Valid() {
		return "", domain.ErrAccountNotLinked
	}

	token := oauth1.NewToken(credentials.AccessToken, credentials.AccessSecret)
	signed := c.oauthConfig.Client(context.WithValue(ctx, oauth1.HTTPClient, c.base), token)
	signed.Timeout = c.config.HTTPTimeout

	httpClient := adapter.NewHTTPClientFrom(signed, c.config.Retry)

	var resp createPostResponse
	url := strings.TrimSuffix(c.config.APIURL, "/") + "/2/tweets"
	if err := httpClient.PostJSON(ctx, url, createPostRequest{Text: text}, &resp); err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}

	if resp.Data.ID == "" {
		return "", fmt.Errorf("failed to create post: response carries no post id")
	}

	logger.DebugCtx(ctx, "Post created", zap.String("postID", resp.Data.ID))

	return resp.Data.ID, nil
}
