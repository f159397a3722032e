package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digitalkookiehub/hireez/internal/llm"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager()
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func TestNewManagerLoadsAllTemplates(t *testing.T) {
	m := newTestManager(t)

	assert.NotEmpty(t, m.System())
	for _, name := range []string{"system", "greeting", "turn", "closing", "question_generation"} {
		assert.Contains(t, m.templates, name)
	}
}

func TestBuildGreetingSubstitutes(t *testing.T) {
	m := newTestManager(t)

	prompt := m.BuildGreeting("Alice", "Backend Engineer", "backend", 30)

	assert.Contains(t, prompt, "Alice")
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "30")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildTurnIncludesHistoryAndBudgets(t *testing.T) {
	m := newTestManager(t)

	prompt := m.BuildTurn(llm.TurnRequest{
		History: []llm.Message{
			{Role: "assistant", Content: "Welcome."},
			{Role: "user", Content: "Thanks, glad to be here."},
		},
		CurrentQuestion:    "Explain goroutines.",
		CandidateReply:     "Thanks, glad to be here.",
		QuestionsRemaining: 4,
		TimeRemainingMin:   25,
	})

	assert.Contains(t, prompt, "Interviewer: Welcome.")
	assert.Contains(t, prompt, "Candidate: Thanks, glad to be here.")
	assert.Contains(t, prompt, "Explain goroutines.")
	assert.Contains(t, prompt, "4")
	assert.Contains(t, prompt, "25")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildTurnWithResumeContext(t *testing.T) {
	m := newTestManager(t)

	withResume := m.BuildTurn(llm.TurnRequest{ResumeContext: "Ten years of Go."})
	withoutResume := m.BuildTurn(llm.TurnRequest{})

	assert.Contains(t, withResume, "Ten years of Go.")
	assert.NotContains(t, withoutResume, "Candidate background")
}

func TestBuildTurnEmptyHistory(t *testing.T) {
	m := newTestManager(t)

	prompt := m.BuildTurn(llm.TurnRequest{})

	assert.Contains(t, prompt, "(no conversation yet)")
}

func TestBuildQuestionGenerationAvoidList(t *testing.T) {
	m := newTestManager(t)

	req := llm.QuestionRequest{
		Domain:   "backend",
		Sector:   "software",
		JobTitle: "Backend Engineer",
		Count:    5,
	}

	plain := m.BuildQuestionGeneration(req)
	assert.NotContains(t, plain, "Do not duplicate")

	req.Avoid = []string{"What is REST?", "Explain ACID."}
	withAvoid := m.BuildQuestionGeneration(req)
	assert.Contains(t, withAvoid, "Do not duplicate")
	assert.Contains(t, withAvoid, "- What is REST?")
	assert.Contains(t, withAvoid, "- Explain ACID.")
}

func TestBuildClosing(t *testing.T) {
	m := newTestManager(t)

	prompt := m.BuildClosing("Alice")

	assert.True(t, strings.Contains(prompt, "Alice"))
	assert.NotContains(t, prompt, "{{.")
}
