// File: services/intelligence/geminiClient.go
package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var errEmptyCompletion = errors.New("gemini returned no candidates")

// GeminiClient implements Generator against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GenerateContent sends the parts in order and joins the text of the first candidate.
func (g *GeminiClient) GenerateContent(ctx context.Context, parts ...string) (string, error) {
	prompt := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		prompt = append(prompt, genai.Text(p))
	}

	resp, err := g.model.GenerateContent(ctx, prompt...)
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func (g *GeminiClient) GenerateReminder(ctx context.Context, p ReminderPrompt) (string, error) {
	return g.GenerateContent(ctx, reminderSystemPrompt, buildReminderPrompt(p))
}

func (g *GeminiClient) Reply(ctx context.Context, p ChatPrompt) (string, error) {
	return g.GenerateContent(ctx, buildSystemPrompt(p.Tenant, p.Registered), buildConversation(p.History, p.Message))
}
