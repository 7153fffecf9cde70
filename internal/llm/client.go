// Package llm adapts the Anthropic API into the one call the session
// loop needs: prompt plus rendered context in, conversational text and
// candidate commands out.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/abdul-hamid-achik/ask/internal/config"
	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
	"github.com/abdul-hamid-achik/ask/internal/logger"
)

// promptTemplate frames every generation request. Conversational
// replies come back prefixed with "# "; everything else is a command.
const promptTemplate = `You are a command-line assistant helping users with shell commands and general assistance.

**Instructions:**
- Analyze if the user is requesting an action/command or making a statement/asking a question
- For ACTION REQUESTS: Generate the appropriate terminal commands
  - Return **only the command**, unless explicitly asked to explain
  - Use **safe practices** (avoid dangerous commands like 'rm -rf /')
  - If multiple commands are needed, return them in sequence
  - Explanations go **before** commands, prefixed with '# '
- For STATEMENTS/QUESTIONS: Respond conversationally
  - Prefix your entire response with '# ' to indicate it's not a command
  - Be helpful, concise, and friendly
- Assume a POSIX shell on the user's host unless they specify otherwise
- Do not use any code blocks in your response

**User request:** `

// Reply is a structured generation result: optional conversational
// lines plus an ordered list of zero or more candidate commands.
type Reply struct {
	Conversational []string
	Commands       []string
}

// Generator is the interface the session loop depends on.
type Generator interface {
	Generate(ctx context.Context, prompt, contextBlock string) (*Reply, error)
	SetModel(model string)
	GetModel() string
}

// Client wraps the Anthropic SDK
type Client struct {
	client *anthropic.Client
	cfg    *config.Config
	model  string
}

// NewClient creates a new generation client
func NewClient(cfg *config.Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.RateLimit.MaxRetries),
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		client: &client,
		cfg:    cfg,
		model:  cfg.GetDefaultModel(),
	}
}

// SetModel changes the current model
func (c *Client) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model
func (c *Client) GetModel() string {
	return c.model
}

// Generate sends the prompt with the rendered session context and
// parses the reply into conversational lines and candidate commands.
func (c *Client) Generate(ctx context.Context, prompt, contextBlock string) (*Reply, error) {
	logger.Debug("Generate: model=%s context_chars=%d", c.model, len(contextBlock))

	system := []anthropic.TextBlockParam{
		{Type: "text", Text: promptTemplate + prompt},
	}
	if contextBlock != "" {
		system = append([]anthropic.TextBlockParam{
			{Type: "text", Text: contextBlock},
		}, system...)
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System:    system,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.Error("Generate: API error: %v", err)
		return nil, classifyAPIError(err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(text.Text)
		}
	}

	reply := ParseReply(content.String())
	if len(reply.Conversational) == 0 && len(reply.Commands) == 0 {
		return nil, askerrors.EmptyReply()
	}

	logger.Debug("Generate: %d conversational lines, %d commands",
		len(reply.Conversational), len(reply.Commands))
	return reply, nil
}

// classifyAPIError maps SDK errors onto the error taxonomy: provider
// rejections keep their status context, everything else is a network
// failure. Cancellation passes through untouched.
func classifyAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return askerrors.ProviderFailed(err)
	}
	return askerrors.NetworkFailed(err)
}
