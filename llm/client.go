package llm

import (
	"context"
	"fmt"

	iriscore "github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers"
	// Auto-register common providers.
	_ "github.com/petal-labs/iris/providers/anthropic"
	_ "github.com/petal-labs/iris/providers/ollama"
	_ "github.com/petal-labs/iris/providers/openai"
)

// Request is a single-prompt completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   *int
}

// Response is the provider's completion result.
type Response struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Client completes prompts against one provider.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFactory creates a Client for a named provider. The Manager defines
// this seam so tests can substitute fakes without touching iris.
type ClientFactory func(providerName string, cfg ProviderConfig) (Client, error)

// NewIrisClient creates a Client backed by the iris provider registry.
func NewIrisClient(name string, cfg ProviderConfig) (Client, error) {
	provider, err := providers.Create(name, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("llm: creating provider %q: %w", name, err)
	}
	return &irisClient{provider: provider}, nil
}

// irisClient adapts an iris core.Provider to the Client interface.
type irisClient struct {
	provider iriscore.Provider
}

// Complete sends a synchronous chat request via the iris provider.
func (c *irisClient) Complete(ctx context.Context, req Request) (Response, error) {
	chatReq := &iriscore.ChatRequest{
		Model: iriscore.ModelID(req.Model),
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, iriscore.Message{
			Role:    iriscore.RoleSystem,
			Content: req.System,
		})
	}
	chatReq.Messages = append(chatReq.Messages, iriscore.Message{
		Role:    iriscore.RoleUser,
		Content: req.Prompt,
	})
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		chatReq.Temperature = &temp
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = req.MaxTokens
	}

	chatResp, err := c.provider.Chat(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf("llm: provider chat failed: %w", err)
	}

	return Response{
		Text:         chatResp.Output,
		Provider:     c.provider.ID(),
		Model:        string(chatResp.Model),
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
		TotalTokens:  chatResp.Usage.TotalTokens,
	}, nil
}

var _ Client = (*irisClient)(nil)
