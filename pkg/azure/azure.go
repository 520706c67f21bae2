package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config holds the Azure OpenAI connection settings. Endpoint, APIKey
// and Deployment have no sane defaults and must come from the
// environment.
type Config struct {
	Endpoint           string        `envconfig:"ENDPOINT" split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Deployment         string        `envconfig:"DEPLOYMENT_NAME" split_words:"true"`
	APIVersion         string        `envconfig:"API_VERSION" split_words:"true" default:"2024-02-01"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Validate reports every missing setting at once so a misconfigured
// deployment is fixed in one round trip.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if strings.TrimSpace(c.Deployment) == "" {
		missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %s", contractx.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// New builds the tool-calling chat model the conversational loop runs on.
func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	conf := &openaimodel.ChatModelConfig{
		ByAzure:     true,
		BaseURL:     strings.TrimRight(c.Endpoint, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		APIVersion:  c.APIVersion,
		Model:       strings.TrimSpace(c.Deployment),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("azure: create chat model: %w", err)
	}

	return m, nil
}

// NewClient creates an OpenAI SDK client aimed at the Azure deployment.
func NewClient(cfg Config) *openaisdk.Client {
	if cfg.Validate() != nil {
		return nil
	}

	client := openaisdk.NewClient(
		azure.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/"), cfg.APIVersion),
		azure.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	)
	return &client
}

// Completer performs single-turn completions against the deployment.
// It backs the SQL translation path, which works on a raw prompt
// rather than a tool-calling conversation.
type Completer struct {
	client      *openaisdk.Client
	deployment  string
	temperature float32
}

func NewCompleter(cfg Config) (*Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Completer{
		client:      NewClient(cfg),
		deployment:  strings.TrimSpace(cfg.Deployment),
		temperature: cfg.Temperature,
	}, nil
}

var _ contractx.Completer = (*Completer)(nil)

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model:       openaisdk.ChatModel(c.deployment),
		Temperature: openaisdk.Float(float64(c.temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrModelInvoke)
	}
	return resp.Choices[0].Message.Content, nil
}
