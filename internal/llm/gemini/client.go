package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/prompts"
)

// Client is the Gemini-backed conversation engine.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts *prompts.Manager
}

func NewClient(config *Config, promptManager *prompts.Manager) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: promptManager,
	}, nil
}

func (c *Client) Greeting(ctx context.Context, candidateName, jobTitle, domain string, durationMin int) (string, error) {
	prompt := c.prompts.BuildGreeting(candidateName, jobTitle, domain, durationMin)
	return c.generate(ctx, prompt)
}

func (c *Client) NextTurn(ctx context.Context, req llm.TurnRequest) (string, error) {
	return c.generate(ctx, c.prompts.BuildTurn(req))
}

// NextTurnStream streams the turn utterance chunk by chunk and returns the
// assembled full text once the stream completes.
func (c *Client) NextTurnStream(ctx context.Context, req llm.TurnRequest, onChunk llm.ChunkFunc) (string, error) {
	prompt := c.prompts.System() + "\n\n" + c.prompts.BuildTurn(req)

	var full strings.Builder
	for result, err := range c.client.Models.GenerateContentStream(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	) {
		if err != nil {
			return "", &llm.ProviderError{
				Provider: "gemini",
				Code:     llm.ErrCodeServiceDown,
				Message:  "Streaming generation failed",
				Err:      err,
			}
		}
		chunk, err := result.Text()
		if err != nil || chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	if full.Len() == 0 {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}
	return full.String(), nil
}

func (c *Client) Closing(ctx context.Context, candidateName string) (string, error) {
	return c.generate(ctx, c.prompts.BuildClosing(candidateName))
}

func (c *Client) GenerateQuestions(ctx context.Context, req llm.QuestionRequest) ([]llm.GeneratedQuestion, error) {
	prompt := c.prompts.BuildQuestionGeneration(req)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []llm.GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &parsed); err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Malformed question generation output",
			Err:      err,
		}
	}
	return parsed.Questions, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(c.prompts.System()+"\n\n"+prompt),
		nil,
	)
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

// models tend to wrap JSON answers in markdown fences
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
