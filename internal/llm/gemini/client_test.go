package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"

	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/prompts"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     "test",
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: server.Client(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    server.URL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}

	promptManager, err := prompts.NewManager()
	if err != nil {
		t.Fatalf("failed to create prompt manager: %v", err)
	}

	return &Client{
		client:  genaiClient,
		config:  &Config{APIKey: "test", Model: "test-model"},
		prompts: promptManager,
	}
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": text},
					},
				},
			},
		},
	}
}

func TestGreetingSuccess(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(textResponse("Welcome, Alice!"))
	})

	greeting, err := client.Greeting(context.Background(), "Alice", "Backend Engineer", "backend", 30)
	if err != nil {
		t.Fatalf("Greeting returned error: %v", err)
	}
	if greeting != "Welcome, Alice!" {
		t.Fatalf("unexpected greeting: %s", greeting)
	}
}

func TestGenerateEmptyResponseIsError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(""))
	})

	_, err := client.Closing(context.Background(), "Alice")
	if err == nil {
		t.Fatal("expected error for empty response")
	}
	provErr, ok := err.(*llm.ProviderError)
	if !ok || provErr.Code != llm.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input provider error, got %v", err)
	}
}

func TestGenerateServiceDown(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.NextTurn(context.Background(), llm.TurnRequest{CandidateReply: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	provErr, ok := err.(*llm.ProviderError)
	if !ok || provErr.Code != llm.ErrCodeServiceDown {
		t.Fatalf("expected service down provider error, got %v", err)
	}
}

func TestGenerateQuestionsParsesFencedJSON(t *testing.T) {
	payload := "```json\n{\"questions\": [{\"question_text\": \"What is REST?\", \"question_type\": \"technical\", \"difficulty\": \"easy\"}]}\n```"
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(payload))
	})

	questions, err := client.GenerateQuestions(context.Background(), llm.QuestionRequest{Count: 1, Domain: "backend"})
	if err != nil {
		t.Fatalf("GenerateQuestions returned error: %v", err)
	}
	if len(questions) != 1 || questions[0].QuestionText != "What is REST?" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestGenerateQuestionsMalformedOutput(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse("here are your questions: 1. ..."))
	})

	_, err := client.GenerateQuestions(context.Background(), llm.QuestionRequest{Count: 1})
	if err == nil {
		t.Fatal("expected error for malformed output")
	}
	provErr, ok := err.(*llm.ProviderError)
	if !ok || provErr.Code != llm.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input provider error, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      "{\"a\":1}",
		"```json\n{\"a\":1}\n```":        "{\"a\":1}",
		"```\n{\"a\":1}\n```":            "{\"a\":1}",
		"  \n```json\n{\"a\":1}\n```\n ": "{\"a\":1}",
	}
	for input, want := range cases {
		if got := stripCodeFences(input); got != want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNewConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error without API key")
	}

	t.Setenv("GEMINI_API_KEY", "key")
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected default model: %s", cfg.Model)
	}
}
