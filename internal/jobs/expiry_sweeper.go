package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/digitalkookiehub/hireez/internal/repositories"
)

// ExpirySweeperJob periodically expires scheduled interviews that were never
// started within the grace window.
type ExpirySweeperJob struct {
	repo        *repositories.InterviewRepository
	schedule    string
	expireAfter time.Duration
	cron        *cron.Cron
	logger      *zap.Logger
}

func NewExpirySweeperJob(repo *repositories.InterviewRepository, schedule string, expireAfter time.Duration, logger *zap.Logger) *ExpirySweeperJob {
	return &ExpirySweeperJob{
		repo:        repo,
		schedule:    schedule,
		expireAfter: expireAfter,
		cron:        cron.New(),
		logger:      logger,
	}
}

// Start registers the sweep on the cron schedule and launches the scheduler.
func (job *ExpirySweeperJob) Start() error {
	if _, err := job.cron.AddFunc(job.schedule, job.Sweep); err != nil {
		return err
	}
	job.cron.Start()
	job.logger.Info("expiry sweeper started", zap.String("schedule", job.schedule))
	return nil
}

func (job *ExpirySweeperJob) Stop() {
	job.cron.Stop()
}

// Sweep marks scheduled interviews whose slot passed more than expireAfter
// ago as EXPIRED. Runs once per cron tick; safe to call manually.
func (job *ExpirySweeperJob) Sweep() {
	cutoff := time.Now().Add(-job.expireAfter)
	expired, err := job.repo.ExpireOverdueScheduled(cutoff)
	if err != nil {
		job.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		job.logger.Info("expired overdue interviews", zap.Int64("count", expired))
	}
}
