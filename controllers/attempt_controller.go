package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
)

type AttemptQuestionInput struct {
	UserAnswer string `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

type CreateAttemptInput struct {
	Score          *int                   `json:"score" binding:"required"`
	TotalQuestions *int                   `json:"totalQuestions" binding:"required"`
	Questions      []AttemptQuestionInput `json:"questions"`
	CourseID       string                 `json:"courseId"`
	QuizID         string                 `json:"quizId"`
	UserID         string                 `json:"userId"`
}

// POST /api/quiz-attempts — record a finished quiz run. Chat-driven
// quizzes have no stored quiz row, so quiz_id falls back to the course
// id (or "general") and question ids are synthesized.
func CreateQuizAttempt(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateAttemptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score and totalQuestions are required"})
		return
	}

	quizID := input.QuizID
	if quizID == "" {
		if input.CourseID != "" {
			quizID = input.CourseID
		} else {
			quizID = "general"
		}
	}

	answers := make(datatypes.JSONSlice[models.AttemptAnswer], 0, len(input.Questions))
	for _, q := range input.Questions {
		answers = append(answers, models.AttemptAnswer{
			QuestionID: uuid.New().String(),
			UserAnswer: q.UserAnswer,
			IsCorrect:  q.IsCorrect,
		})
	}

	attempt := models.QuizAttempt{
		ID:             uuid.New(),
		QuizID:         quizID,
		UserID:         resolveUserID(c, input.UserID),
		Score:          *input.Score,
		TotalQuestions: *input.TotalQuestions,
		Answers:        answers,
	}

	if err := db.Create(&attempt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attempt", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// GET /api/quiz-attempts/:id
func GetQuizAttempt(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var attempt models.QuizAttempt
	if err := db.First(&attempt, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// GET /api/quiz-attempts — the user's attempt history, newest first.
func GetQuizAttempts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	query := db.Where("user_id = ?", userID)
	if quizID := c.Query("quizId"); quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("created_at DESC").Find(&attempts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attempts", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attempts)
}
