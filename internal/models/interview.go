package models

import "time"

type InterviewType string

const (
	InterviewTypeChat  InterviewType = "ai_chat"
	InterviewTypeVoice InterviewType = "ai_voice"
	InterviewTypeBoth  InterviewType = "ai_both"
)

type InterviewStatus string

const (
	StatusScheduled  InterviewStatus = "scheduled"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusCancelled  InterviewStatus = "cancelled"
	StatusExpired    InterviewStatus = "expired"
)

// IsTerminal reports whether no further turns are accepted.
func (s InterviewStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

type SpeakerType string

const (
	SpeakerAI        SpeakerType = "ai"
	SpeakerCandidate SpeakerType = "candidate"
	SpeakerSystem    SpeakerType = "system"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageAudio  MessageType = "audio"
	MessageSystem MessageType = "system"
)

type AnswerMode string

const (
	AnswerModeText  AnswerMode = "text"
	AnswerModeVoice AnswerMode = "voice"
)

// Interview is one candidate+job interview attempt.
type Interview struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CandidateID      uint            `gorm:"index;not null" json:"candidate_id"`
	JobID            uint            `gorm:"index;not null" json:"job_id"`
	InterviewType    InterviewType   `gorm:"size:20;default:ai_chat" json:"interview_type"`
	Status           InterviewStatus `gorm:"size:20;index;default:scheduled" json:"status"`
	ScheduledAt      *time.Time      `json:"scheduled_at,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	DurationLimitMin int             `gorm:"default:30" json:"duration_limit_min"`
	Language         string          `gorm:"size:10;default:en" json:"language"`
	TotalQuestions   int             `gorm:"default:0" json:"total_questions"`
	QuestionsAsked   int             `gorm:"default:0" json:"questions_asked"`
	RecordingPath    string          `gorm:"size:500" json:"recording_path,omitempty"`
	CreatedBy        *uint           `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Questions   []InterviewQuestion   `gorm:"foreignKey:InterviewID" json:"questions,omitempty"`
	Answers     []InterviewAnswer     `gorm:"foreignKey:InterviewID" json:"answers,omitempty"`
	Transcripts []InterviewTranscript `gorm:"foreignKey:InterviewID" json:"transcripts,omitempty"`
}

// InterviewQuestion is one planned question in an interview's question set.
type InterviewQuestion struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	InterviewID      uint       `gorm:"index;not null" json:"interview_id"`
	QuestionText     string     `gorm:"size:2000;not null" json:"question_text"`
	QuestionType     string     `gorm:"size:50;default:technical" json:"question_type"`
	Difficulty       string     `gorm:"size:20;default:medium" json:"difficulty"`
	QuestionOrder    int        `gorm:"default:0" json:"question_order"`
	IsFollowUp       bool       `gorm:"default:false" json:"is_follow_up"`
	ParentQuestionID *uint      `json:"parent_question_id,omitempty"`
	ExpectedAnswer   string     `json:"expected_answer,omitempty"`
	Keywords         []string   `gorm:"serializer:json" json:"keywords,omitempty"`
	AskedAt          *time.Time `json:"asked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// InterviewAnswer binds one candidate response to a question.
type InterviewAnswer struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	InterviewID     uint       `gorm:"index;not null" json:"interview_id"`
	QuestionID      uint       `gorm:"not null" json:"question_id"`
	AnswerText      string     `json:"answer_text,omitempty"`
	AnswerAudioPath string     `gorm:"size:500" json:"answer_audio_path,omitempty"`
	AnswerMode      AnswerMode `gorm:"size:10;default:text" json:"answer_mode"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	AnsweredAt      time.Time  `gorm:"autoCreateTime" json:"answered_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// InterviewTranscript is one utterance in the append-only interview log.
// Rows are never mutated or deleted once written; sequence_order is assigned
// by the conductor and is strictly increasing per interview.
type InterviewTranscript struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	InterviewID   uint        `gorm:"index;not null" json:"interview_id"`
	Speaker       SpeakerType `gorm:"size:20;default:ai" json:"speaker"`
	MessageType   MessageType `gorm:"size:20;default:text" json:"message_type"`
	Content       string      `gorm:"not null" json:"content"`
	SequenceOrder int         `gorm:"default:0" json:"sequence_order"`
	Timestamp     time.Time   `gorm:"autoCreateTime" json:"timestamp"`
	CreatedAt     time.Time   `json:"created_at"`
}
