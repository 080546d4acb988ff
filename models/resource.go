package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResourceKind string

const (
	ResourceDocument ResourceKind = "document"
	ResourceImage    ResourceKind = "image"
	ResourceText     ResourceKind = "text"
)

type Resource struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string                      `gorm:"size:255;not null" json:"name"`
	Kind      ResourceKind                `gorm:"size:20;not null" json:"type"`
	Content   string                      `gorm:"type:text" json:"content"`
	Size      int64                       `json:"size,omitempty"`
	FilePath  string                      `gorm:"type:text" json:"file_path,omitempty"`
	UserID    string                      `gorm:"size:64;not null;index" json:"user_id"`
	CourseIDs datatypes.JSONSlice[string] `json:"course_ids"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

// HasCourse reports whether the resource belongs to the given course.
func (r *Resource) HasCourse(courseID string) bool {
	for _, id := range r.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// RemoveCourse rewrites the course-id set without the given course.
// Returns true when the set actually changed.
func (r *Resource) RemoveCourse(courseID string) bool {
	if !r.HasCourse(courseID) {
		return false
	}
	kept := make(datatypes.JSONSlice[string], 0, len(r.CourseIDs))
	for _, id := range r.CourseIDs {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	r.CourseIDs = kept
	return true
}
