package models

import "time"

// BankQuestion is a pre-seeded question in the fallback bank, stored in Mongo
// and scoped by domain.
type BankQuestion struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Domain         string    `bson:"domain" json:"domain"`
	QuestionText   string    `bson:"question_text" json:"question_text"`
	QuestionType   string    `bson:"question_type" json:"question_type"`
	Difficulty     string    `bson:"difficulty" json:"difficulty"`
	ExpectedAnswer string    `bson:"expected_answer,omitempty" json:"expected_answer,omitempty"`
	Keywords       []string  `bson:"keywords,omitempty" json:"keywords,omitempty"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
