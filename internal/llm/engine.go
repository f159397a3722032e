package llm

import "context"

// Message is one role/content pair in the conversation history fed back to
// the engine on every turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest carries everything the engine needs to produce the next AI
// utterance in an in-progress interview.
type TurnRequest struct {
	History            []Message
	CurrentQuestion    string
	CandidateReply     string
	QuestionsRemaining int
	TimeRemainingMin   int
	ResumeContext      string
}

// QuestionRequest carries the job context for question-set generation.
type QuestionRequest struct {
	Domain          string
	Sector          string
	JobTitle        string
	JobDescription  string
	ExperienceYears int
	Count           int
	Avoid           []string
}

// GeneratedQuestion is one question produced by the engine.
type GeneratedQuestion struct {
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	Difficulty     string   `json:"difficulty"`
	ExpectedAnswer string   `json:"expected_answer"`
	Keywords       []string `json:"keywords"`
}

// ChunkFunc receives incremental content chunks from a streaming turn.
type ChunkFunc func(chunk string)

// Engine is the conversation engine contract. All calls are fallible,
// non-idempotent and moderately slow; callers must treat every one as a
// suspension point and must not mutate shared state before a call returns.
type Engine interface {
	Greeting(ctx context.Context, candidateName, jobTitle, domain string, durationMin int) (string, error)
	NextTurn(ctx context.Context, req TurnRequest) (string, error)
	// NextTurnStream emits incremental chunks via onChunk and returns the
	// fully assembled text once the stream completes.
	NextTurnStream(ctx context.Context, req TurnRequest, onChunk ChunkFunc) (string, error)
	Closing(ctx context.Context, candidateName string) (string, error)
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
