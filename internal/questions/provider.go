package questions

import (
	"context"

	"go.uber.org/zap"

	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/repositories"
)

// how many bank questions are shown to the engine as an avoid-list
const avoidSampleLimit = 50

// Provider supplies the ordered question set for a new interview: AI
// generation first, random bank sample on any generation failure. The
// fallback never errors; a zero-question result is valid.
type Provider struct {
	engine llm.Engine
	repo   *repositories.InterviewRepository
	bank   repositories.BankRepository
	logger *zap.Logger
}

func NewProvider(engine llm.Engine, repo *repositories.InterviewRepository, bank repositories.BankRepository, logger *zap.Logger) *Provider {
	return &Provider{engine: engine, repo: repo, bank: bank, logger: logger}
}

// GenerateForJob produces up to count questions for a job, with question_order
// assigned 1..n. The returned questions carry no interview ID; the caller
// binds and persists them.
func (p *Provider) GenerateForJob(ctx context.Context, jobID uint, count int, resumeContext string) ([]models.InterviewQuestion, error) {
	job, err := p.repo.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	avoid := p.sampleBankTexts(ctx, job.DomainName)

	generated, err := p.engine.GenerateQuestions(ctx, llm.QuestionRequest{
		Domain:          orDefault(job.DomainName, "General"),
		Sector:          orDefault(job.Sector, "General"),
		JobTitle:        job.Title,
		JobDescription:  job.Description,
		ExperienceYears: job.ExperienceMin,
		Count:           count,
		Avoid:           avoid,
	})
	if err != nil || len(generated) == 0 {
		if err != nil {
			p.logger.Warn("question generation failed, using bank fallback",
				zap.Uint("job_id", jobID), zap.Error(err))
		}
		return p.fallbackFromBank(ctx, job.DomainName, count), nil
	}

	result := make([]models.InterviewQuestion, 0, len(generated))
	for idx, q := range generated {
		result = append(result, models.InterviewQuestion{
			QuestionText:   q.QuestionText,
			QuestionType:   orDefault(q.QuestionType, "technical"),
			Difficulty:     orDefault(q.Difficulty, "medium"),
			QuestionOrder:  idx + 1,
			ExpectedAnswer: q.ExpectedAnswer,
			Keywords:       q.Keywords,
		})
	}
	return result, nil
}

func (p *Provider) sampleBankTexts(ctx context.Context, domain string) []string {
	if p.bank == nil {
		return nil
	}
	texts, err := p.bank.SampleTexts(ctx, domain, avoidSampleLimit)
	if err != nil {
		p.logger.Warn("failed to sample question bank", zap.Error(err))
		return nil
	}
	return texts
}

// fallbackFromBank never fails: any bank error degrades to an empty set,
// which interview creation tolerates.
func (p *Provider) fallbackFromBank(ctx context.Context, domain string, count int) []models.InterviewQuestion {
	if p.bank == nil {
		return nil
	}

	banked, err := p.bank.RandomActive(ctx, domain, count)
	if err != nil {
		p.logger.Warn("question bank fallback failed", zap.Error(err))
		return nil
	}

	result := make([]models.InterviewQuestion, 0, len(banked))
	for idx, q := range banked {
		result = append(result, models.InterviewQuestion{
			QuestionText:   q.QuestionText,
			QuestionType:   orDefault(q.QuestionType, "technical"),
			Difficulty:     orDefault(q.Difficulty, "medium"),
			QuestionOrder:  idx + 1,
			ExpectedAnswer: q.ExpectedAnswer,
			Keywords:       q.Keywords,
		})
	}
	return result
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
