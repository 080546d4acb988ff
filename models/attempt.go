package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AttemptAnswer struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuizAttempt is written exactly once, when a quiz finishes, and never
// mutated afterwards.
type QuizAttempt struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID         string                             `gorm:"size:64;not null;index" json:"quiz_id"`
	UserID         string                             `gorm:"size:64;not null;index" json:"user_id"`
	Score          int                                `gorm:"not null" json:"score"`
	TotalQuestions int                                `gorm:"not null" json:"total_questions"`
	Answers        datatypes.JSONSlice[AttemptAnswer] `json:"answers"`
	CreatedAt      time.Time                          `gorm:"autoCreateTime" json:"created_at"`
}
