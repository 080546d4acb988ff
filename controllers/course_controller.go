package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
)

type CreateCourseInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	UserID      string `json:"userId"`
}

type UpdateCourseInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// POST /api/courses
func CreateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course name is required"})
		return
	}

	color := input.Color
	if color == "" {
		color = models.DefaultCourseColor
	}

	course := models.Course{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		Color:       color,
		UserID:      resolveUserID(c, input.UserID),
	}

	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GET /api/courses/:id
func GetCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var course models.Course
	if err := db.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}

// GET /api/courses — all courses for a user, ordered by name.
func GetCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	var courses []models.Course
	if err := db.Where("user_id = ?", userID).Order("name").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

// PUT /api/courses/:id — partial patch of name/description/color.
func UpdateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
		updates["slug"] = slug.Make(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Color != nil && *input.Color != "" {
		updates["color"] = *input.Color
	}

	if len(updates) > 0 {
		if err := db.Model(&course).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course", "details": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, course)
}

// DELETE /api/courses/:id — removes the course id from every resource
// that references it (one update per resource), then deletes the course.
// The whole cascade runs in a single transaction: a failed resource
// update rolls the deletion back instead of leaving stale references.
func DeleteCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	courseID := c.Param("id")

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var resources []models.Resource
		if err := tx.Find(&resources).Error; err != nil {
			return err
		}
		for i := range resources {
			if resources[i].RemoveCourse(courseID) {
				if err := tx.Model(&resources[i]).Update("course_ids", resources[i].CourseIDs).Error; err != nil {
					return err
				}
			}
		}
		return tx.Delete(&models.Course{}, "id = ?", courseID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
