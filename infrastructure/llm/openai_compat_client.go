package llm

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/retry"
)

// OpenAICompatClient ใช้ได้กับทุก provider ที่เปิด endpoint แบบ OpenAI chat completions
// (DeepSeek, DashScope compatible-mode)
type OpenAICompatClient struct {
	provider     string
	apiKey       string
	defaultModel string
	client       openai.Client
}

type OpenAICompatConfig struct {
	Provider     string // ชื่อที่ใช้ใน error/log เช่น deepseek, qwen
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

func NewOpenAICompatClient(cfg OpenAICompatConfig) *OpenAICompatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// retry ทำที่ชั้น service ผ่าน pkg/retry จึงปิด retry ของ SDK
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	)

	return &OpenAICompatClient{
		provider:     cfg.Provider,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		client:       client,
	}
}

// Configured true เมื่อมี API key
func (c *OpenAICompatClient) Configured() bool {
	return c.apiKey != ""
}

func (c *OpenAICompatClient) Generate(ctx context.Context, req ports.TextRequest) (string, error) {
	if !c.Configured() {
		return "", retry.Permanent(apperrors.Configuration(c.provider, "API key is not set"))
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Model: openai.ChatModel(model),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.Upstream(c.provider, "chat completion failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperrors.Upstream(c.provider, "chat completion returned no choices", nil)
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
