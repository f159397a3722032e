package handlers

import (
	"time"

	"github.com/digitalkookiehub/hireez/internal/models"
)

type CreateInterviewRequest struct {
	CandidateID      uint       `json:"candidate_id"`
	JobID            uint       `json:"job_id"`
	InterviewType    string     `json:"interview_type"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	DurationLimitMin int        `json:"duration_limit_min"`
	Language         string     `json:"language"`
}

func (r *CreateInterviewRequest) Validate() error {
	if r.CandidateID == 0 {
		return &models.ErrorResponse{Code: "validation_error", Message: "candidate_id is required"}
	}
	if r.JobID == 0 {
		return &models.ErrorResponse{Code: "validation_error", Message: "job_id is required"}
	}
	switch r.InterviewType {
	case "", string(models.InterviewTypeChat), string(models.InterviewTypeVoice), string(models.InterviewTypeBoth):
	default:
		return &models.ErrorResponse{Code: "validation_error", Message: "interview_type must be ai_chat, ai_voice or ai_both"}
	}
	if r.DurationLimitMin < 0 || r.DurationLimitMin > 240 {
		return &models.ErrorResponse{Code: "validation_error", Message: "duration_limit_min must be between 0 and 240"}
	}
	return nil
}

type ChatMessageRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

func (r *ChatMessageRequest) Validate() error {
	if r.Message == "" {
		return &models.ErrorResponse{Code: "validation_error", Message: "message is required"}
	}
	switch r.Mode {
	case "", string(models.AnswerModeText), string(models.AnswerModeVoice):
	default:
		return &models.ErrorResponse{Code: "validation_error", Message: "mode must be text or voice"}
	}
	return nil
}

func (r *ChatMessageRequest) AnswerMode() models.AnswerMode {
	if r.Mode == string(models.AnswerModeVoice) {
		return models.AnswerModeVoice
	}
	return models.AnswerModeText
}

type RecordingRequest struct {
	RecordingPath string `json:"recording_path"`
}

func (r *RecordingRequest) Validate() error {
	if r.RecordingPath == "" {
		return &models.ErrorResponse{Code: "validation_error", Message: "recording_path is required"}
	}
	return nil
}
