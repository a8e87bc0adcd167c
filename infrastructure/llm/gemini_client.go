package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
	"storyforge/pkg/retry"
)

const geminiProvider = "gemini"

type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiClient apiKey ว่างได้ จะคืน ConfigurationError ตอน Generate
func NewGeminiClient(ctx context.Context, apiKey, defaultModel string) (*GeminiClient, error) {
	c := &GeminiClient{defaultModel: defaultModel}
	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiClient) Configured() bool {
	return c.client != nil
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *GeminiClient) Generate(ctx context.Context, req ports.TextRequest) (string, error) {
	if !c.Configured() {
		return "", retry.Permanent(apperrors.Configuration(geminiProvider, "GEMINI_API_KEY is not set"))
	}

	name := req.Model
	if name == "" {
		name = c.defaultModel
	}

	model := c.client.GenerativeModel(name)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", apperrors.Upstream(geminiProvider, "generate content failed", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.Upstream(geminiProvider, "empty response", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		logger.WarnContext(ctx, "Gemini returned no text parts", "model", name)
		return "", apperrors.Upstream(geminiProvider, "response has no text", nil)
	}
	return out, nil
}
