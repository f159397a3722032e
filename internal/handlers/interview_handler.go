package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digitalkookiehub/hireez/internal/conductor"
	"github.com/digitalkookiehub/hireez/internal/middleware"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/repositories"
	"github.com/digitalkookiehub/hireez/internal/utils"
)

type InterviewHandler struct {
	conductor *conductor.Conductor
	logger    *zap.Logger
}

func NewInterviewHandler(c *conductor.Conductor, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{conductor: c, logger: logger}
}

func interviewIDParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "interviewId"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// writeConductorError maps the error taxonomy onto HTTP statuses.
func (h *InterviewHandler) writeConductorError(w http.ResponseWriter, err error) {
	kind := conductor.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case conductor.KindNotFound:
		status = http.StatusNotFound
	case conductor.KindInvalidState:
		status = http.StatusConflict
	case conductor.KindUnauthorized:
		status = http.StatusForbidden
	case conductor.KindUpstream:
		status = http.StatusBadGateway
	}
	utils.Error(w, status, string(kind), err.Error())
}

func (h *InterviewHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*CreateInterviewRequest](r)

	params := conductor.CreateParams{
		CandidateID:      req.CandidateID,
		JobID:            req.JobID,
		InterviewType:    models.InterviewType(req.InterviewType),
		ScheduledAt:      req.ScheduledAt,
		DurationLimitMin: req.DurationLimitMin,
		Language:         req.Language,
	}

	interview, err := h.conductor.Create(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to create interview", zap.Error(err))
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, interview)
}

func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	id, ok := interviewIDParam(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}

	interview, err := h.conductor.Get(r.Context(), id)
	if err != nil {
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interview)
}

func (h *InterviewHandler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.InterviewFilter{
		Status: models.InterviewStatus(q.Get("status")),
	}
	if v, err := strconv.ParseUint(q.Get("candidate_id"), 10, 32); err == nil {
		filter.CandidateID = uint(v)
	}
	if v, err := strconv.ParseUint(q.Get("job_id"), 10, 32); err == nil {
		filter.JobID = uint(v)
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filter.PageSize = v
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	interviews, total, err := h.conductor.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list interviews", zap.Error(err))
		utils.Error(w, http.StatusInternalServerError, "internal_error", "failed to list interviews")
		return
	}
	utils.JSON(w, http.StatusOK, models.ListResponse{
		Items:    interviews,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (h *InterviewHandler) StartInterview(w http.ResponseWriter, r *http.Request) {
	id, ok := interviewIDParam(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}

	result, err := h.conductor.Start(r.Context(), id)
	if err != nil {
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := interviewIDParam(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}
	req := middleware.GetValidatedRequest[*ChatMessageRequest](r)

	result, err := h.conductor.ProcessMessage(r.Context(), id, req.Message, req.AnswerMode())
	if err != nil {
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) EndInterview(w http.ResponseWriter, r *http.Request) {
	id, ok := interviewIDParam(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}

	interview, err := h.conductor.End(r.Context(), id)
	if err != nil {
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interview)
}

func (h *InterviewHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := interviewIDParam(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}
	req := middleware.GetValidatedRequest[*RecordingRequest](r)

	interview, err := h.conductor.AttachRecording(r.Context(), id, req.RecordingPath)
	if err != nil {
		h.writeConductorError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interview)
}
