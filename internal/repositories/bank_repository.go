package repositories

import (
	"context"

	"github.com/digitalkookiehub/hireez/internal/models"
)

// BankRepository provides read access to the pre-seeded question bank used
// both as an avoid-list during generation and as the fallback source when
// generation fails.
type BankRepository interface {
	// SampleTexts returns up to limit question texts for a domain, used to
	// steer the engine away from duplicates.
	SampleTexts(ctx context.Context, domain string, limit int) ([]string, error)
	// RandomActive returns up to count random active questions for a domain;
	// an empty domain means unscoped. Returning fewer than count (including
	// zero) is valid.
	RandomActive(ctx context.Context, domain string, count int) ([]models.BankQuestion, error)
}
