package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// resultSchema tells the model the exact JSON shape to return.
const resultSchema = `Antworte ausschließlich mit einem JSON-Objekt dieser Form:
{
  "score_pct": <int 0-100>,
  "summary": "<kurze Zusammenfassung>",
  "suggestions": [{"title": "...", "description": "...", "effort_hours": <int>}],
  "endpoints": [{"method": "...", "path": "...", "maturity_level": <int>}]
}
Lasse "endpoints" leer, wenn die Analyse keine API-Endpunkte betrifft.`

// GeminiClient analyzes corpora with Google Gemini.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, model, apiKey string, temperature float64) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Analyze sends the prompt plus corpus context and decodes the structured
// JSON answer.
func (c *GeminiClient) Analyze(ctx context.Context, promptText, contextText string) (*Result, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = "application/json"

	fullPrompt := promptText + "\n\n" + resultSchema
	if contextText != "" {
		fullPrompt += "\n\nContext:\n" + contextText
	}

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}
	cleaned := cleanJSONBlock(text)

	result := &Result{}
	if err := json.Unmarshal([]byte(cleaned), result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	result.Raw = cleaned

	if result.ScorePct < 0 || result.ScorePct > 100 {
		return nil, fmt.Errorf("analysis score %d out of range", result.ScorePct)
	}

	return result, nil
}

// Provider returns "gemini".
func (c *GeminiClient) Provider() string { return "gemini" }

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
