package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionTrueFalse      QuestionKind = "true_false"
	QuestionShortAnswer    QuestionKind = "short_answer"
)

type Quiz struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	UserID      string                      `gorm:"size:64;not null;index" json:"user_id"`
	ResourceIDs datatypes.JSONSlice[string] `json:"resource_ids"`
	CourseID    *string                     `gorm:"size:64" json:"course_id,omitempty"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// QuizQuestion is immutable once generated.
type QuizQuestion struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Question      string                      `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSONSlice[string] `json:"options,omitempty"`
	CorrectAnswer string                      `gorm:"type:text;not null" json:"correct_answer"`
	Explanation   string                      `gorm:"type:text" json:"explanation"`
	Kind          QuestionKind                `gorm:"size:20;not null" json:"type"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}
