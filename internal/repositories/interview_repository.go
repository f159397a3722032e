package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/digitalkookiehub/hireez/internal/models"
)

var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrJobNotFound       = errors.New("job not found")
)

// InterviewFilter narrows and paginates interview listings.
type InterviewFilter struct {
	Status      models.InterviewStatus
	CandidateID uint
	JobID       uint
	Page        int
	PageSize    int
}

type InterviewRepository struct {
	DB *gorm.DB
}

// InTransaction runs fn against a repository bound to a single database
// transaction. All writes inside fn commit or roll back together.
func (r *InterviewRepository) InTransaction(fn func(tx *InterviewRepository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&InterviewRepository{DB: tx})
	})
}

func (r *InterviewRepository) CreateInterview(interview *models.Interview) error {
	return r.DB.Create(interview).Error
}

func (r *InterviewRepository) GetInterview(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

// GetInterviewWithQuestions loads the interview and its question set ordered
// by question_order.
func (r *InterviewRepository) GetInterviewWithQuestions(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

// GetInterviewDetail loads the interview with nested questions, answers and
// transcripts for the detail endpoint.
func (r *InterviewRepository) GetInterviewDetail(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Preload("Answers").
		Preload("Transcripts", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

func (r *InterviewRepository) SaveInterview(interview *models.Interview) error {
	return r.DB.Save(interview).Error
}

// UpdateRecordingPath writes only the recording reference, so a concurrent
// turn or termination is never overwritten by a stale row.
func (r *InterviewRepository) UpdateRecordingPath(id uint, path string) error {
	return r.DB.Model(&models.Interview{}).
		Where("id = ?", id).
		Update("recording_path", path).Error
}

func (r *InterviewRepository) ListInterviews(filter InterviewFilter) ([]models.Interview, int64, error) {
	query := r.DB.Model(&models.Interview{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CandidateID != 0 {
		query = query.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.JobID != 0 {
		query = query.Where("job_id = ?", filter.JobID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var interviews []models.Interview
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&interviews).Error
	return interviews, total, err
}

func (r *InterviewRepository) GetCandidate(id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.First(&candidate, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	return &candidate, err
}

func (r *InterviewRepository) GetJob(id uint) (*models.JobDescription, error) {
	var job models.JobDescription
	err := r.DB.First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	return &job, err
}

func (r *InterviewRepository) CreateQuestions(questions []models.InterviewQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *InterviewRepository) MarkQuestionAsked(questionID uint, at time.Time) error {
	return r.DB.Model(&models.InterviewQuestion{}).
		Where("id = ?", questionID).
		Update("asked_at", at).Error
}

// CreateTranscript appends one utterance. Transcripts are append-only; there
// is no update or delete path.
func (r *InterviewRepository) CreateTranscript(transcript *models.InterviewTranscript) error {
	return r.DB.Create(transcript).Error
}

func (r *InterviewRepository) CreateAnswer(answer *models.InterviewAnswer) error {
	return r.DB.Create(answer).Error
}

// ListTranscripts returns the full ordered log, used to rehydrate a session.
func (r *InterviewRepository) ListTranscripts(interviewID uint) ([]models.InterviewTranscript, error) {
	var transcripts []models.InterviewTranscript
	err := r.DB.
		Where("interview_id = ?", interviewID).
		Order("sequence_order ASC").
		Find(&transcripts).Error
	return transcripts, err
}

// ExpireOverdueScheduled marks interviews still SCHEDULED past the cutoff as
// EXPIRED. Used by the background sweep.
func (r *InterviewRepository) ExpireOverdueScheduled(before time.Time) (int64, error) {
	now := time.Now().UTC()
	tx := r.DB.Model(&models.Interview{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusScheduled, before).
		Updates(map[string]interface{}{
			"status":       models.StatusExpired,
			"completed_at": now,
		})
	return tx.RowsAffected, tx.Error
}
