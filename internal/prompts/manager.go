package prompts

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/digitalkookiehub/hireez/internal/llm"
)

// embeds all .yaml files in the templates folder into the binary
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Manager loads the interview prompt templates once and builds concrete
// prompts from them. Placeholder substitution is plain string replacement.
type Manager struct {
	templates map[string]string
}

// NewManager creates a prompt manager and loads all embedded templates.
func NewManager() (*Manager, error) {
	m := &Manager{templates: make(map[string]string)}
	if err := m.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return m, nil
}

func (m *Manager) loadTemplates() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var loaded map[string]string
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}
		for name, tmpl := range loaded {
			m.templates[name] = tmpl
		}
	}

	for _, required := range []string{"system", "greeting", "turn", "closing", "question_generation"} {
		if _, ok := m.templates[required]; !ok {
			return fmt.Errorf("missing prompt template: %s", required)
		}
	}
	return nil
}

func (m *Manager) System() string {
	return m.templates["system"]
}

func (m *Manager) BuildGreeting(candidateName, jobTitle, domain string, durationMin int) string {
	result := m.templates["greeting"]
	result = strings.ReplaceAll(result, "{{.CandidateName}}", candidateName)
	result = strings.ReplaceAll(result, "{{.JobTitle}}", jobTitle)
	result = strings.ReplaceAll(result, "{{.Domain}}", domain)
	result = strings.ReplaceAll(result, "{{.DurationMin}}", strconv.Itoa(durationMin))
	return result
}

func (m *Manager) BuildTurn(req llm.TurnRequest) string {
	resumeSection := "\n"
	if req.ResumeContext != "" {
		resumeSection = "\nCandidate background (from resume):\n" + req.ResumeContext + "\n"
	}

	result := m.templates["turn"]
	result = strings.ReplaceAll(result, "{{.History}}", flattenHistory(req.History))
	result = strings.ReplaceAll(result, "{{.CandidateReply}}", req.CandidateReply)
	result = strings.ReplaceAll(result, "{{.CurrentQuestion}}", req.CurrentQuestion)
	result = strings.ReplaceAll(result, "{{.QuestionsRemaining}}", strconv.Itoa(req.QuestionsRemaining))
	result = strings.ReplaceAll(result, "{{.TimeRemainingMin}}", strconv.Itoa(req.TimeRemainingMin))
	result = strings.ReplaceAll(result, "{{.ResumeSection}}", resumeSection)
	return result
}

func (m *Manager) BuildClosing(candidateName string) string {
	return strings.ReplaceAll(m.templates["closing"], "{{.CandidateName}}", candidateName)
}

func (m *Manager) BuildQuestionGeneration(req llm.QuestionRequest) string {
	avoidSection := "\n"
	if len(req.Avoid) > 0 {
		avoidSection = "\nDo not duplicate any of these existing questions:\n- " +
			strings.Join(req.Avoid, "\n- ") + "\n"
	}

	result := m.templates["question_generation"]
	result = strings.ReplaceAll(result, "{{.Count}}", strconv.Itoa(req.Count))
	result = strings.ReplaceAll(result, "{{.Domain}}", req.Domain)
	result = strings.ReplaceAll(result, "{{.Sector}}", req.Sector)
	result = strings.ReplaceAll(result, "{{.JobTitle}}", req.JobTitle)
	result = strings.ReplaceAll(result, "{{.JobDescription}}", req.JobDescription)
	result = strings.ReplaceAll(result, "{{.ExperienceYears}}", strconv.Itoa(req.ExperienceYears))
	result = strings.ReplaceAll(result, "{{.AvoidSection}}", avoidSection)
	return result
}

func flattenHistory(history []llm.Message) string {
	if len(history) == 0 {
		return "(no conversation yet)"
	}
	var b strings.Builder
	for _, msg := range history {
		speaker := "Candidate"
		if msg.Role == "assistant" {
			speaker = "Interviewer"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
