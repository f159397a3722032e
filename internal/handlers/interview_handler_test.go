package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/digitalkookiehub/hireez/internal/conductor"
	"github.com/digitalkookiehub/hireez/internal/events"
	"github.com/digitalkookiehub/hireez/internal/handlers"
	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/notify"
	"github.com/digitalkookiehub/hireez/internal/questions"
	"github.com/digitalkookiehub/hireez/internal/repositories"
	"github.com/digitalkookiehub/hireez/internal/routers"
	"github.com/digitalkookiehub/hireez/internal/session"
	"github.com/digitalkookiehub/hireez/internal/testhelpers"
)

type scriptedEngine struct {
	greeting  string
	turnReply string
	closing   string
	questions []llm.GeneratedQuestion
}

func (e *scriptedEngine) Greeting(ctx context.Context, candidateName, jobTitle, domain string, durationMin int) (string, error) {
	return e.greeting, nil
}

func (e *scriptedEngine) NextTurn(ctx context.Context, req llm.TurnRequest) (string, error) {
	return e.turnReply, nil
}

func (e *scriptedEngine) NextTurnStream(ctx context.Context, req llm.TurnRequest, onChunk llm.ChunkFunc) (string, error) {
	half := len(e.turnReply) / 2
	onChunk(e.turnReply[:half])
	onChunk(e.turnReply[half:])
	return e.turnReply, nil
}

func (e *scriptedEngine) Closing(ctx context.Context, candidateName string) (string, error) {
	return e.closing, nil
}

func (e *scriptedEngine) GenerateQuestions(ctx context.Context, req llm.QuestionRequest) ([]llm.GeneratedQuestion, error) {
	return e.questions, nil
}

func (e *scriptedEngine) GetProviderName() string { return "scripted" }

func newScriptedEngine() *scriptedEngine {
	return &scriptedEngine{
		greeting:  "Welcome to the interview.",
		turnReply: "Noted. Next, tell me about caching.",
		closing:   "Thanks, we are done.",
		questions: []llm.GeneratedQuestion{
			{QuestionText: "What is a REST API?"},
			{QuestionText: "Explain transactions."},
			{QuestionText: "Describe a hard bug."},
		},
	}
}

type handlerFixture struct {
	router    *chi.Mux
	cond      *conductor.Conductor
	db        *gorm.DB
	candidate *models.Candidate
	job       *models.JobDescription
}

func setupHandlers(t *testing.T, engine llm.Engine) *handlerFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db := testhelpers.SetupTestDB(t)
	candidate, job := testhelpers.SeedCandidateAndJob(t, db)

	logger := zap.NewNop()
	repo := &repositories.InterviewRepository{DB: db}
	sessions := session.NewStore(rdb, time.Hour)
	provider := questions.NewProvider(engine, repo, nil, logger)
	cond := conductor.New(repo, sessions, engine, provider, notify.NopNotifier{}, events.NopPublisher{}, "http://localhost:5173", logger)

	router := chi.NewRouter()
	routers.InterviewRoutes(router, handlers.NewInterviewHandler(cond, logger))

	return &handlerFixture{router: router, cond: cond, db: db, candidate: candidate, job: job}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateInterviewEndpoint(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())

	rec := fixture.do(t, http.MethodPost, "/api/v1/interviews/", map[string]any{
		"candidate_id": fixture.candidate.ID,
		"job_id":       fixture.job.ID,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var interview models.Interview
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &interview))
	assert.Equal(t, models.StatusScheduled, interview.Status)
	assert.Equal(t, 3, interview.TotalQuestions)
}

func TestCreateInterviewValidation(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())

	rec := fixture.do(t, http.MethodPost, "/api/v1/interviews/", map[string]any{
		"job_id": fixture.job.ID,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidate_id")
}

func TestCreateInterviewUnknownCandidateIs404(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())

	rec := fixture.do(t, http.MethodPost, "/api/v1/interviews/", map[string]any{
		"candidate_id": 999,
		"job_id":       fixture.job.ID,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInterviewEndpoint(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())
	interview, err := fixture.cond.Create(context.Background(), conductor.CreateParams{
		CandidateID: fixture.candidate.ID, JobID: fixture.job.ID,
	})
	assert.NoError(t, err)

	rec := fixture.do(t, http.MethodGet, fmt.Sprintf("/api/v1/interviews/%d", interview.ID), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Interview
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, interview.ID, got.ID)
	assert.Len(t, got.Questions, 3)
}

func TestGetInterviewNotFound(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())

	rec := fixture.do(t, http.MethodGet, "/api/v1/interviews/999", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInterviewBadID(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())

	rec := fixture.do(t, http.MethodGet, "/api/v1/interviews/abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInterviewsEndpoint(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())
	for i := 0; i < 2; i++ {
		_, err := fixture.cond.Create(context.Background(), conductor.CreateParams{
			CandidateID: fixture.candidate.ID, JobID: fixture.job.ID,
		})
		assert.NoError(t, err)
	}

	rec := fixture.do(t, http.MethodGet, "/api/v1/interviews/?status=scheduled", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var list models.ListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.EqualValues(t, 2, list.Total)
}

func TestInterviewChatFlowOverHTTP(t *testing.T) {
	engine := newScriptedEngine()
	fixture := setupHandlers(t, engine)
	interview, err := fixture.cond.Create(context.Background(), conductor.CreateParams{
		CandidateID: fixture.candidate.ID, JobID: fixture.job.ID,
	})
	assert.NoError(t, err)

	rec := fixture.do(t, http.MethodPost, fmt.Sprintf("/api/v1/interviews/%d/start", interview.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), engine.greeting)

	rec = fixture.do(t, http.MethodPost, fmt.Sprintf("/api/v1/interviews/%d/message", interview.ID), map[string]any{
		"message": "An API over HTTP resources.",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var turn conductor.TurnResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.False(t, turn.IsComplete)
	assert.Equal(t, engine.turnReply, turn.Message)

	rec = fixture.do(t, http.MethodPost, fmt.Sprintf("/api/v1/interviews/%d/end", interview.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var ended models.Interview
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ended))
	assert.Equal(t, models.StatusCompleted, ended.Status)
}

func TestMessageBeforeStartIs409(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())
	interview, err := fixture.cond.Create(context.Background(), conductor.CreateParams{
		CandidateID: fixture.candidate.ID, JobID: fixture.job.ID,
	})
	assert.NoError(t, err)

	rec := fixture.do(t, http.MethodPost, fmt.Sprintf("/api/v1/interviews/%d/message", interview.ID), map[string]any{
		"message": "hello",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid_state"))
}

func TestUploadRecordingEndpoint(t *testing.T) {
	fixture := setupHandlers(t, newScriptedEngine())
	interview, err := fixture.cond.Create(context.Background(), conductor.CreateParams{
		CandidateID: fixture.candidate.ID, JobID: fixture.job.ID,
	})
	assert.NoError(t, err)

	rec := fixture.do(t, http.MethodPost, fmt.Sprintf("/api/v1/interviews/%d/recording", interview.ID), map[string]any{
		"recording_path": "s3://recordings/7.webm",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Interview
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s3://recordings/7.webm", got.RecordingPath)
}
