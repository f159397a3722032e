package testhelpers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/digitalkookiehub/hireez/internal/models"
)

// SetupTestDB creates an isolated in-memory SQLite database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.JobDescription{},
		&models.Interview{},
		&models.InterviewQuestion{},
		&models.InterviewAnswer{},
		&models.InterviewTranscript{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SeedCandidateAndJob inserts one candidate and one job and returns them.
func SeedCandidateAndJob(t *testing.T, db *gorm.DB) (*models.Candidate, *models.JobDescription) {
	t.Helper()

	candidate := &models.Candidate{
		FullName:   "Alice Tan",
		Email:      "alice@example.com",
		ResumeText: "Five years of backend development experience with Go and Postgres.",
	}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}

	job := &models.JobDescription{
		Title:       "Backend Engineer",
		Description: "Build and operate API services.",
		DomainName:  "backend",
		Sector:      "software",
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return candidate, job
}
