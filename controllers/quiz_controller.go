package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
	"github.com/quizmeai/quizme-backend/services"
)

type GenerateQuizRequest struct {
	ResourceIDs   []string `json:"resourceIds"`
	TopicFocus    string   `json:"topicFocus"`
	QuestionCount int      `json:"questionCount"`
	CourseID      string   `json:"courseId"`
	UserID        string   `json:"userId"`
}

// POST /api/quiz — generate a quiz from the given resources. The quiz
// and its questions are written atomically; a malformed model response
// saves nothing.
func GenerateQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ResourceIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resourceIds is required"})
		return
	}

	quiz, err := services.GenerateQuiz(c.Request.Context(), db, services.GenerateQuizInput{
		ResourceIDs:   req.ResourceIDs,
		TopicFocus:    req.TopicFocus,
		QuestionCount: req.QuestionCount,
		UserID:        resolveUserID(c, req.UserID),
		CourseID:      req.CourseID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoResources):
			c.JSON(http.StatusNotFound, gin.H{"error": "No resources found for the given ids"})
		case errors.Is(err, services.ErrSaveFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save quiz", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate quiz questions", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GET /api/quiz/:id
func GetQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var quiz models.Quiz
	if err := db.Preload("Questions").First(&quiz, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// GET /api/quiz — the user's quizzes, newest first.
func GetQuizzes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	var quizzes []models.Quiz
	if err := db.Preload("Questions").Where("user_id = ?", userID).Order("created_at DESC").Find(&quizzes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quizzes", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quizzes)
}
