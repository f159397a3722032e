package models

import "time"

// Candidate owns the resume context fed into question generation, and the
// optional user account checked at the real-time boundary.
type Candidate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	FullName   string    `gorm:"size:200;not null" json:"full_name"`
	Email      string    `gorm:"size:255;index" json:"email"`
	Phone      string    `gorm:"size:30" json:"phone,omitempty"`
	ResumeText string    `json:"resume_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobDescription carries the context question generation works from.
type JobDescription struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `json:"description"`
	DomainName    string    `gorm:"size:100" json:"domain_name,omitempty"`
	Sector        string    `gorm:"size:100" json:"sector,omitempty"`
	ExperienceMin int       `gorm:"default:0" json:"experience_min"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
