package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
)

type attemptSummary struct {
	ID             string  `json:"id"`
	QuizID         string  `json:"quizId"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Percent        float64 `json:"percent"`
	CreatedAt      string  `json:"createdAt"`
}

// GET /api/stats/performance — aggregate quiz performance for a user.
func GetPerformanceStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	var attempts []models.QuizAttempt
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attempts", "details": err.Error()})
		return
	}

	var totalPercent, bestPercent float64
	recent := make([]attemptSummary, 0, len(attempts))
	for _, a := range attempts {
		percent := 0.0
		if a.TotalQuestions > 0 {
			percent = float64(a.Score) / float64(a.TotalQuestions) * 100
		}
		totalPercent += percent
		if percent > bestPercent {
			bestPercent = percent
		}
		if len(recent) < 10 {
			recent = append(recent, attemptSummary{
				ID:             a.ID.String(),
				QuizID:         a.QuizID,
				Score:          a.Score,
				TotalQuestions: a.TotalQuestions,
				Percent:        percent,
				CreatedAt:      a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
	}

	avgPercent := 0.0
	if len(attempts) > 0 {
		avgPercent = totalPercent / float64(len(attempts))
	}

	c.JSON(http.StatusOK, gin.H{
		"totalAttempts":  len(attempts),
		"averagePercent": avgPercent,
		"bestPercent":    bestPercent,
		"recentAttempts": recent,
	})
}
