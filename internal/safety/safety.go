package safety

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/logger"
)

// verdictSeed pins sampling so a redelivered event gets the same verdict
var verdictSeed = 7

// ErrAmbiguousVerdict is returned when the moderation model answers neither true nor false
var ErrAmbiguousVerdict = errors.New("ambiguous safety verdict")

// Gate decides whether content may be published under a policy
//
//go:generate mockgen -source=safety.go -destination=../mocks/safety.go -package=mocks -mock_names=Gate=MockGate
type Gate interface {
	// IsContentSafe returns false when the content violates the policy.
	// An error means no verdict could be obtained.
	IsContentSafe(ctx context.Context, content string, policy string) (bool, error)
}

// ChatCompleter is the subset of the OpenAI client used by the gate
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig holds the configuration for the OpenAI moderation gate
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI compatible endpoints
}

const systemPrompt = `You moderate social media posts before they are published on behalf of a user.
You are given the post content and the publishing policy chosen by the account owner.
Answer with the single word "true" if the post is safe to publish under the policy and
does not contain hate speech, harassment, sexual content involving minors, threats, doxxing or scams.
Otherwise answer with the single word "false".`

type openAIGate struct {
	client ChatCompleter
	model  string
}

// NewOpenAIGate creates a gate backed by an OpenAI chat model
func NewOpenAIGate(cfg OpenAIConfig) Gate {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewOpenAIGateWithClient(openai.NewClientWithConfig(clientConfig), cfg.Model)
}

// NewOpenAIGateWithClient creates a gate on top of an existing chat client
func NewOpenAIGateWithClient(client ChatCompleter, model string) Gate {
	return &openAIGate{client: client, model: model}
}

func (g *openAIGate) IsContentSafe(ctx context.Context, content string, policy string) (bool, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Policy: %s\n\nPost:\n%s", policy, content)},
		},
		// Temperature 0 is dropped by omitempty, the smallest non-zero value keeps sampling greedy
		Temperature:         math.SmallestNonzeroFloat32,
		Seed:                &verdictSeed,
		MaxCompletionTokens: 5,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return false, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("openai returned no choices")
	}

	verdict := strings.ToLower(strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `."'`))
	switch verdict {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		logger.WarnCtx(ctx, "Unexpected moderation answer", zap.String("answer", resp.Choices[0].Message.Content))
		return false, fmt.Errorf("%w: %q", ErrAmbiguousVerdict, resp.Choices[0].Message.Content)
	}
}

type allowAllGate struct{}

// NewAllowAllGate creates a gate that accepts all content, for local development
func NewAllowAllGate() Gate {
	return allowAllGate{}
}

func (allowAllGate) IsContentSafe(ctx context.Context, content string, policy string) (bool, error) {
	return true, nil
}
