package conductor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/digitalkookiehub/hireez/internal/events"
	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/metrics"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/notify"
	"github.com/digitalkookiehub/hireez/internal/questions"
	"github.com/digitalkookiehub/hireez/internal/repositories"
	"github.com/digitalkookiehub/hireez/internal/session"
)

const (
	defaultQuestionCount = 10
	defaultDurationMin   = 30
	resumeContextLimit   = 2000
)

// roles allowed to drive any interview, not just their own
var staffRoles = map[string]bool{
	"super_admin":       true,
	"hr_manager":        true,
	"placement_officer": true,
}

// Conductor owns the interview lifecycle: it orchestrates the session store,
// question provider and conversation engine, persists every turn, decides
// termination and is the only component that reads or writes Sessions.
type Conductor struct {
	repo        *repositories.InterviewRepository
	sessions    *session.Store
	engine      llm.Engine
	questions   *questions.Provider
	notifier    notify.Notifier
	events      events.Publisher
	logger      *zap.Logger
	frontendURL string

	// one mutex per interview; turns for the same interview never interleave.
	// Entries are reclaimed on terminal transitions, so an interview that is
	// abandoned without ever ending holds its entry until process restart.
	// The Delete runs while the mutex is still held; a goroutine already
	// parked on that mutex wakes on the stale entry while a fresh caller
	// allocates a new one, which is safe because every locked path re-reads
	// the interview status before writing.
	locks sync.Map
}

func New(
	repo *repositories.InterviewRepository,
	sessions *session.Store,
	engine llm.Engine,
	questionProvider *questions.Provider,
	notifier notify.Notifier,
	publisher events.Publisher,
	frontendURL string,
	logger *zap.Logger,
) *Conductor {
	return &Conductor{
		repo:        repo,
		sessions:    sessions,
		engine:      engine,
		questions:   questionProvider,
		notifier:    notifier,
		events:      publisher,
		logger:      logger,
		frontendURL: frontendURL,
	}
}

// lockInterview serializes the read-modify-write of one interview's session.
func (c *Conductor) lockInterview(interviewID uint) func() {
	v, _ := c.locks.LoadOrStore(interviewID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type CreateParams struct {
	CandidateID      uint
	JobID            uint
	InterviewType    models.InterviewType
	ScheduledAt      *time.Time
	DurationLimitMin int
	Language         string
	CreatedBy        *uint
}

// StartResult is the payload the transport layer relays to the client.
type StartResult struct {
	InterviewID      uint   `json:"interview_id"`
	Greeting         string `json:"greeting"`
	TotalQuestions   int    `json:"total_questions"`
	DurationLimitMin int    `json:"duration_limit_min"`
}

// TurnResult is the outcome of one processed candidate message.
type TurnResult struct {
	Message          string `json:"message"`
	IsComplete       bool   `json:"is_complete"`
	QuestionsAsked   int    `json:"questions_asked,omitempty"`
	QuestionNumber   int    `json:"question_number,omitempty"`
	TotalQuestions   int    `json:"total_questions,omitempty"`
	TimeRemainingMin int    `json:"time_remaining_min,omitempty"`
}

// Snapshot is the read-only session view returned to reconnecting clients.
type Snapshot struct {
	ConversationHistory  []llm.Message `json:"conversation_history"`
	CurrentQuestionIndex int           `json:"current_question_index"`
}

// Create persists a SCHEDULED interview with a freshly produced question set.
// Question generation never hard-fails creation and the invite notification
// is fire-and-forget.
func (c *Conductor) Create(ctx context.Context, params CreateParams) (*models.Interview, error) {
	candidate, err := c.repo.GetCandidate(params.CandidateID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("candidate %d not found", params.CandidateID))
	}
	job, err := c.repo.GetJob(params.JobID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("job %d not found", params.JobID))
	}

	interview := &models.Interview{
		CandidateID:      params.CandidateID,
		JobID:            params.JobID,
		InterviewType:    params.InterviewType,
		Status:           models.StatusScheduled,
		ScheduledAt:      params.ScheduledAt,
		DurationLimitMin: params.DurationLimitMin,
		Language:         params.Language,
		CreatedBy:        params.CreatedBy,
	}
	if interview.InterviewType == "" {
		interview.InterviewType = models.InterviewTypeChat
	}
	if interview.DurationLimitMin <= 0 {
		interview.DurationLimitMin = defaultDurationMin
	}
	if interview.Language == "" {
		interview.Language = "en"
	}
	if err := c.repo.CreateInterview(interview); err != nil {
		return nil, upstream("failed to create interview", err)
	}

	questionSet, err := c.questions.GenerateForJob(ctx, params.JobID, defaultQuestionCount, candidate.ResumeText)
	if err != nil {
		// generation must never fail creation; proceed with no questions
		c.logger.Warn("question set unavailable for new interview",
			zap.Uint("interview_id", interview.ID), zap.Error(err))
		questionSet = nil
	}
	for i := range questionSet {
		questionSet[i].InterviewID = interview.ID
	}
	if err := c.repo.CreateQuestions(questionSet); err != nil {
		return nil, upstream("failed to persist question set", err)
	}

	interview.TotalQuestions = len(questionSet)
	if err := c.repo.SaveInterview(interview); err != nil {
		return nil, upstream("failed to update interview", err)
	}
	if interview.TotalQuestions == 0 {
		c.logger.Warn("interview created with no questions",
			zap.Uint("interview_id", interview.ID), zap.Uint("job_id", params.JobID))
	}

	c.notifier.SendInterviewInvite(notify.InterviewInvite{
		CandidateEmail: candidate.Email,
		CandidateName:  candidate.FullName,
		JobTitle:       job.Title,
		InterviewDate:  formatScheduledAt(params.ScheduledAt),
		InterviewLink:  fmt.Sprintf("%s/interviews/%d/room", c.frontendURL, interview.ID),
	})

	return interview, nil
}

// Start transitions the interview to IN_PROGRESS, persists the greeting as
// transcript sequence 1 and initializes the session. Calling it again while
// a session exists is idempotent; IN_PROGRESS with an absent session is the
// recovery path and rebuilds the session from the transcript log.
func (c *Conductor) Start(ctx context.Context, interviewID uint) (*StartResult, error) {
	unlock := c.lockInterview(interviewID)
	defer unlock()

	interview, err := c.repo.GetInterviewWithQuestions(interviewID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if interview.Status.IsTerminal() {
		return nil, invalidState(fmt.Sprintf("interview cannot be started, status: %s", interview.Status))
	}

	sess, err := c.sessions.Get(ctx, interviewID)
	if err != nil {
		return nil, upstream("session store unavailable", err)
	}
	if sess != nil {
		// already running; do not duplicate the greeting or reset progress
		return &StartResult{
			InterviewID:      interviewID,
			Greeting:         firstAssistantMessage(sess.ConversationHistory),
			TotalQuestions:   interview.TotalQuestions,
			DurationLimitMin: interview.DurationLimitMin,
		}, nil
	}

	if interview.Status == models.StatusInProgress {
		result, rebuilt, err := c.rebuildSession(ctx, interview)
		if err != nil {
			return nil, err
		}
		if rebuilt {
			return result, nil
		}
		// in progress but no transcripts either; fall through and greet fresh
	}

	candidateName, jobTitle, domain := c.greetingContext(interview)
	greeting, err := c.engine.Greeting(ctx, candidateName, jobTitle, domain, interview.DurationLimitMin)
	if err != nil {
		return nil, upstream("conversation engine failed to produce greeting", err)
	}

	if err := c.repo.CreateTranscript(&models.InterviewTranscript{
		InterviewID:   interviewID,
		Speaker:       models.SpeakerAI,
		MessageType:   models.MessageText,
		Content:       greeting,
		SequenceOrder: 1,
	}); err != nil {
		return nil, upstream("failed to persist greeting", err)
	}

	now := time.Now().UTC()
	interview.Status = models.StatusInProgress
	if interview.StartedAt == nil {
		interview.StartedAt = &now
	}
	if err := c.repo.SaveInterview(interview); err != nil {
		return nil, upstream("failed to update interview", err)
	}

	sess = &session.Session{
		InterviewID:          interviewID,
		Questions:            sessionQuestions(interview.Questions),
		CurrentQuestionIndex: 0,
		ConversationHistory:  []llm.Message{{Role: "assistant", Content: greeting}},
		StartedAt:            now,
		SequenceCounter:      2,
		CandidateResume:      c.resumeContext(interview.CandidateID),
	}
	if err := c.sessions.Put(ctx, interviewID, sess); err != nil {
		// status is already IN_PROGRESS with no session; the next Start
		// call recovers via the rebuild path
		return nil, upstream("failed to store session", err)
	}

	return &StartResult{
		InterviewID:      interviewID,
		Greeting:         greeting,
		TotalQuestions:   interview.TotalQuestions,
		DurationLimitMin: interview.DurationLimitMin,
	}, nil
}

// rebuildSession rehydrates the session from the transcript log after a TTL
// expiry or session-store loss. Returns rebuilt=false when there is nothing
// to rebuild from.
func (c *Conductor) rebuildSession(ctx context.Context, interview *models.Interview) (*StartResult, bool, error) {
	transcripts, err := c.repo.ListTranscripts(interview.ID)
	if err != nil {
		return nil, false, upstream("failed to load transcripts", err)
	}
	if len(transcripts) == 0 {
		return nil, false, nil
	}

	history := make([]llm.Message, 0, len(transcripts))
	for _, t := range transcripts {
		role := "user"
		if t.Speaker == models.SpeakerAI {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: t.Content})
	}

	startedAt := time.Now().UTC()
	if interview.StartedAt != nil {
		startedAt = *interview.StartedAt
	}

	sess := &session.Session{
		InterviewID:          interview.ID,
		Questions:            sessionQuestions(interview.Questions),
		CurrentQuestionIndex: interview.QuestionsAsked,
		ConversationHistory:  history,
		StartedAt:            startedAt,
		SequenceCounter:      transcripts[len(transcripts)-1].SequenceOrder + 1,
		CandidateResume:      c.resumeContext(interview.CandidateID),
	}
	if err := c.sessions.Put(ctx, interview.ID, sess); err != nil {
		return nil, false, upstream("failed to store session", err)
	}

	c.logger.Info("rebuilt session from transcripts",
		zap.Uint("interview_id", interview.ID),
		zap.Int("sequence_counter", sess.SequenceCounter))

	return &StartResult{
		InterviewID:      interview.ID,
		Greeting:         firstAssistantMessage(history),
		TotalQuestions:   interview.TotalQuestions,
		DurationLimitMin: interview.DurationLimitMin,
	}, true, nil
}

// ProcessMessage runs one interview turn for a candidate message.
func (c *Conductor) ProcessMessage(ctx context.Context, interviewID uint, candidateMessage string, mode models.AnswerMode) (*TurnResult, error) {
	return c.processTurn(ctx, interviewID, candidateMessage, mode, nil)
}

// ProcessMessageStream is the streaming variant: the AI utterance is emitted
// incrementally through onChunk, with identical persistence and state
// transitions once the stream completes.
func (c *Conductor) ProcessMessageStream(ctx context.Context, interviewID uint, candidateMessage string, mode models.AnswerMode, onChunk llm.ChunkFunc) (*TurnResult, error) {
	return c.processTurn(ctx, interviewID, candidateMessage, mode, onChunk)
}

func (c *Conductor) processTurn(ctx context.Context, interviewID uint, candidateMessage string, mode models.AnswerMode, onChunk llm.ChunkFunc) (*TurnResult, error) {
	unlock := c.lockInterview(interviewID)
	defer unlock()

	sess, err := c.sessions.Get(ctx, interviewID)
	if err != nil {
		return nil, upstream("session store unavailable", err)
	}
	if sess == nil {
		return nil, invalidState("interview session not found; start the interview first")
	}

	interview, err := c.repo.GetInterview(interviewID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if interview.Status != models.StatusInProgress {
		return nil, invalidState("interview is not in progress")
	}

	idx := sess.CurrentQuestionIndex
	qs := sess.Questions
	seq := sess.SequenceCounter

	currentQuestion := "General discussion"
	if idx < len(qs) {
		currentQuestion = qs[idx].Text
	}

	// float minutes decide termination; the engine and client see the
	// truncated integer
	elapsed := time.Since(sess.StartedAt).Minutes()
	timeRemaining := float64(interview.DurationLimitMin) - elapsed
	if timeRemaining < 0 {
		timeRemaining = 0
	}

	historyWithUser := append(cloneHistory(sess.ConversationHistory), llm.Message{Role: "user", Content: candidateMessage})

	// time budget takes priority over the question budget
	if timeRemaining <= 0 || idx >= len(qs)-1 {
		return c.finishTurn(ctx, interview, sess, candidateMessage, mode, idx, seq)
	}

	turnReq := llm.TurnRequest{
		History:            historyWithUser,
		CurrentQuestion:    currentQuestion,
		CandidateReply:     candidateMessage,
		QuestionsRemaining: len(qs) - idx - 1,
		TimeRemainingMin:   int(timeRemaining),
		ResumeContext:      sess.CandidateResume,
	}

	var aiResponse string
	if onChunk != nil {
		aiResponse, err = c.engine.NextTurnStream(ctx, turnReq, onChunk)
	} else {
		aiResponse, err = c.engine.NextTurn(ctx, turnReq)
	}
	if err != nil {
		// nothing was persisted and the session is untouched; retryable
		metrics.TurnsProcessed.WithLabelValues("engine_error").Inc()
		return nil, upstream("conversation engine failed", err)
	}

	if err := c.persistTurn(interview, sess, candidateMessage, aiResponse, mode, idx, seq); err != nil {
		return nil, err
	}

	sess.ConversationHistory = append(historyWithUser, llm.Message{Role: "assistant", Content: aiResponse})
	sess.CurrentQuestionIndex = idx + 1
	sess.SequenceCounter = seq + 2
	if err := c.sessions.Put(ctx, interviewID, sess); err != nil {
		return nil, upstream("failed to store session", err)
	}

	metrics.TurnsProcessed.WithLabelValues("continued").Inc()

	return &TurnResult{
		Message:          aiResponse,
		IsComplete:       false,
		QuestionNumber:   idx + 2,
		TotalQuestions:   len(qs),
		TimeRemainingMin: int(timeRemaining),
	}, nil
}

// finishTurn runs the terminal leg of a turn: closing utterance, final
// persistence, status transition and session eviction. Hard cutover; no
// further questions after this point.
func (c *Conductor) finishTurn(ctx context.Context, interview *models.Interview, sess *session.Session, candidateMessage string, mode models.AnswerMode, idx, seq int) (*TurnResult, error) {
	candidateName := "Candidate"
	if candidate, err := c.repo.GetCandidate(interview.CandidateID); err == nil {
		candidateName = candidate.FullName
	}

	closing, err := c.engine.Closing(ctx, candidateName)
	if err != nil {
		metrics.TurnsProcessed.WithLabelValues("engine_error").Inc()
		return nil, upstream("conversation engine failed to produce closing", err)
	}

	now := time.Now().UTC()
	interview.Status = models.StatusCompleted
	interview.CompletedAt = &now
	if err := c.persistTurn(interview, sess, candidateMessage, closing, mode, idx, seq); err != nil {
		return nil, err
	}

	if err := c.sessions.Delete(ctx, interview.ID); err != nil {
		c.logger.Warn("failed to delete session after completion",
			zap.Uint("interview_id", interview.ID), zap.Error(err))
	}
	c.locks.Delete(interview.ID)

	c.events.InterviewCompleted(ctx, events.InterviewCompletedEvent{
		InterviewID:    interview.ID,
		Status:         string(interview.Status),
		QuestionsAsked: interview.QuestionsAsked,
		CompletedAt:    now.Format(time.RFC3339),
	})
	metrics.TurnsProcessed.WithLabelValues("completed").Inc()
	metrics.InterviewsCompleted.WithLabelValues(string(interview.Status)).Inc()

	return &TurnResult{
		Message:        closing,
		IsComplete:     true,
		QuestionsAsked: interview.QuestionsAsked,
	}, nil
}

// persistTurn writes the whole turn in one transaction: the candidate
// transcript at seq, the bound answer and questions_asked when a question is
// in range, the AI transcript at seq+1 and any pending interview fields. A
// failure rolls everything back, so a retried turn reuses seq without leaving
// a duplicate or a gap behind.
func (c *Conductor) persistTurn(interview *models.Interview, sess *session.Session, candidateMessage, aiMessage string, mode models.AnswerMode, idx, seq int) error {
	messageType := models.MessageText
	if mode == models.AnswerModeVoice {
		messageType = models.MessageAudio
	}
	err := c.repo.InTransaction(func(tx *repositories.InterviewRepository) error {
		if err := tx.CreateTranscript(&models.InterviewTranscript{
			InterviewID:   interview.ID,
			Speaker:       models.SpeakerCandidate,
			MessageType:   messageType,
			Content:       candidateMessage,
			SequenceOrder: seq,
		}); err != nil {
			return err
		}

		if idx < len(sess.Questions) {
			if err := tx.CreateAnswer(&models.InterviewAnswer{
				InterviewID: interview.ID,
				QuestionID:  sess.Questions[idx].ID,
				AnswerText:  candidateMessage,
				AnswerMode:  mode,
			}); err != nil {
				return err
			}
			interview.QuestionsAsked = idx + 1
			if err := tx.MarkQuestionAsked(sess.Questions[idx].ID, time.Now().UTC()); err != nil {
				return err
			}
		}

		if err := tx.CreateTranscript(&models.InterviewTranscript{
			InterviewID:   interview.ID,
			Speaker:       models.SpeakerAI,
			MessageType:   models.MessageText,
			Content:       aiMessage,
			SequenceOrder: seq + 1,
		}); err != nil {
			return err
		}
		return tx.SaveInterview(interview)
	})
	if err != nil {
		return upstream("failed to persist turn", err)
	}
	return nil
}

// End is the explicit termination path. Ending an already-terminal interview
// is a no-op. An interview that never made any progress is CANCELLED rather
// than COMPLETED.
func (c *Conductor) End(ctx context.Context, interviewID uint) (*models.Interview, error) {
	unlock := c.lockInterview(interviewID)
	defer unlock()

	interview, err := c.repo.GetInterview(interviewID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if interview.Status.IsTerminal() {
		return interview, nil
	}

	now := time.Now().UTC()
	if interview.QuestionsAsked == 0 && interview.StartedAt == nil {
		interview.Status = models.StatusCancelled
	} else {
		interview.Status = models.StatusCompleted
	}
	interview.CompletedAt = &now
	if err := c.repo.SaveInterview(interview); err != nil {
		return nil, upstream("failed to finalize interview", err)
	}

	if err := c.sessions.Delete(ctx, interviewID); err != nil {
		c.logger.Warn("failed to delete session on end",
			zap.Uint("interview_id", interviewID), zap.Error(err))
	}
	c.locks.Delete(interviewID)

	c.events.InterviewCompleted(ctx, events.InterviewCompletedEvent{
		InterviewID:    interview.ID,
		Status:         string(interview.Status),
		QuestionsAsked: interview.QuestionsAsked,
		CompletedAt:    now.Format(time.RFC3339),
	})
	metrics.InterviewsCompleted.WithLabelValues(string(interview.Status)).Inc()

	return interview, nil
}

// Get returns the interview with nested questions, answers and transcripts.
func (c *Conductor) Get(ctx context.Context, interviewID uint) (*models.Interview, error) {
	interview, err := c.repo.GetInterviewDetail(interviewID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	return interview, nil
}

// List returns a filtered interview page.
func (c *Conductor) List(ctx context.Context, filter repositories.InterviewFilter) ([]models.Interview, int64, error) {
	return c.repo.ListInterviews(filter)
}

// GetSnapshot returns the live conversation state for a reconnecting client
// without mutating anything.
func (c *Conductor) GetSnapshot(ctx context.Context, interviewID uint) (*Snapshot, error) {
	sess, err := c.sessions.Get(ctx, interviewID)
	if err != nil {
		return nil, upstream("session store unavailable", err)
	}
	if sess == nil {
		return nil, invalidState("no active session for this interview")
	}
	return &Snapshot{
		ConversationHistory:  cloneHistory(sess.ConversationHistory),
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
	}, nil
}

// AttachRecording stores a post-hoc recording reference. The write touches
// only the recording column, so it cannot clobber a concurrent turn or
// termination.
func (c *Conductor) AttachRecording(ctx context.Context, interviewID uint, recordingPath string) (*models.Interview, error) {
	unlock := c.lockInterview(interviewID)
	defer unlock()

	interview, err := c.repo.GetInterview(interviewID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if err := c.repo.UpdateRecordingPath(interviewID, recordingPath); err != nil {
		return nil, upstream("failed to update interview", err)
	}
	interview.RecordingPath = recordingPath
	return interview, nil
}

// CanAccess reports whether a caller may drive an interview: staff always,
// candidates only their own.
func (c *Conductor) CanAccess(ctx context.Context, interviewID uint, subject, role string) (bool, error) {
	if staffRoles[role] {
		return true, nil
	}
	interview, err := c.repo.GetInterview(interviewID)
	if err != nil {
		return false, notFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	candidate, err := c.repo.GetCandidate(interview.CandidateID)
	if err != nil {
		return false, nil
	}
	if candidate.UserID == nil {
		return false, nil
	}
	return fmt.Sprintf("%d", *candidate.UserID) == subject, nil
}

func (c *Conductor) greetingContext(interview *models.Interview) (candidateName, jobTitle, domain string) {
	candidateName = "Candidate"
	if candidate, err := c.repo.GetCandidate(interview.CandidateID); err == nil {
		candidateName = candidate.FullName
	}
	jobTitle = "the position"
	domain = "general"
	if job, err := c.repo.GetJob(interview.JobID); err == nil {
		jobTitle = job.Title
		if job.DomainName != "" {
			domain = job.DomainName
		} else if job.Description != "" {
			domain = truncate(job.Description, 100)
		}
	}
	return candidateName, jobTitle, domain
}

func (c *Conductor) resumeContext(candidateID uint) string {
	candidate, err := c.repo.GetCandidate(candidateID)
	if err != nil {
		return ""
	}
	return truncate(candidate.ResumeText, resumeContextLimit)
}

func sessionQuestions(qs []models.InterviewQuestion) []session.Question {
	out := make([]session.Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, session.Question{ID: q.ID, Text: q.QuestionText, Type: q.QuestionType})
	}
	return out
}

func firstAssistantMessage(history []llm.Message) string {
	for _, msg := range history {
		if msg.Role == "assistant" {
			return msg.Content
		}
	}
	return ""
}

func cloneHistory(history []llm.Message) []llm.Message {
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func formatScheduledAt(t *time.Time) string {
	if t == nil {
		return "To be confirmed"
	}
	return t.Format("January 2, 2006 at 3:04 PM")
}
