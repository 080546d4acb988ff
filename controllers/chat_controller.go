package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
	"github.com/quizmeai/quizme-backend/services"
)

const (
	chatResourceLimit   = 5
	chatExcerptLimit    = 200
	chatLogResponseCap  = 1000
	chatSystemPrimerFmt = `You are QuizmeAI, a friendly study assistant. You explain topics and run interactive quizzes over the student's own materials.

When running a quiz, prefix every reply with exactly one control tag:
[QUIZ_START <n>] when starting a quiz with n questions, followed by "Starting quiz with <n> questions" and the first question.
[QUESTION] when asking the next question.
[FEEDBACK correct] or [FEEDBACK incorrect] when evaluating an answer, with a short explanation.
[SUMMARY] when wrapping up with the final score and review advice.
Replies outside a quiz carry no tag.

Ask one question at a time and wait for the student's answer before continuing.

Student materials:
%s`
)

type ChatRequest struct {
	Messages []services.ChatTurn   `json:"messages" binding:"required"`
	UserID   string                `json:"userId"`
	Session  *services.QuizSession `json:"session"`
	EndQuiz  bool                  `json:"endQuiz"`
}

// POST /api/chat — one turn of the study conversation. The client holds
// the quiz session between turns and sends it back with each request;
// the handler advances it with the model's reply, strips any control
// tag from the prose, and returns both. A finished quiz is recorded as
// an attempt and the session resets to idle. When the model is
// unreachable a canned fallback keeps the conversation alive.
func Chat(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages is required"})
		return
	}

	userID := resolveUserID(c, req.UserID)
	lastMessage := req.Messages[len(req.Messages)-1].Content

	session := req.Session
	if session == nil {
		session = &services.QuizSession{}
	}

	if req.EndQuiz && session.InProgress {
		reply := fmt.Sprintf("Quiz ended. You answered %d of %d questions and got %d correct.",
			session.CurrentQuestion, session.TotalQuestions, session.CorrectAnswers)
		session.EndQuiz()
		finishQuizSession(db, session, userID)
		logChatExchange(db, userID, lastMessage, reply)
		c.JSON(http.StatusOK, gin.H{"reply": reply, "session": session})
		return
	}

	resources := chatResources(db, userID, session.CourseID)

	// A quiz cannot be grounded on nothing: answer the intent directly
	// instead of letting the model invent a quiz out of thin air.
	if len(resources) == 0 && !session.InProgress && services.IsQuizIntent(lastMessage) {
		reply := "I'd love to quiz you, but you haven't added any study materials yet. " +
			"Upload a document or add some notes first, then ask me again!"
		logChatExchange(db, userID, lastMessage, reply)
		c.JSON(http.StatusOK, gin.H{"reply": reply, "session": session})
		return
	}

	reply, err := services.CompleteChat(c.Request.Context(), buildChatPrimer(resources), req.Messages)
	if err != nil {
		log.Printf("chat: completion failed for %s: %v", userID, err)
		reply = services.FallbackResponder{}.Respond(lastMessage)
	}

	prose := session.ObserveReply(reply, lastMessage)
	if session.Finished() {
		finishQuizSession(db, session, userID)
	}

	logChatExchange(db, userID, lastMessage, prose)
	c.JSON(http.StatusOK, gin.H{"reply": prose, "session": session})
}

// chatResources loads the user's newest materials for the primer,
// narrowed to the session's course when one is set.
func chatResources(db *gorm.DB, userID, courseID string) []models.Resource {
	var resources []models.Resource
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&resources).Error; err != nil {
		log.Printf("chat: resource lookup failed for %s: %v", userID, err)
		return nil
	}
	picked := make([]models.Resource, 0, chatResourceLimit)
	for _, r := range resources {
		if courseID != "" && !r.HasCourse(courseID) {
			continue
		}
		picked = append(picked, r)
		if len(picked) == chatResourceLimit {
			break
		}
	}
	return picked
}

// finishQuizSession persists the attempt for a finished quiz (best
// effort) and resets the session to idle.
func finishQuizSession(db *gorm.DB, session *services.QuizSession, userID string) {
	if len(session.Evaluations) > 0 {
		if err := db.Create(session.BuildAttempt(userID)).Error; err != nil {
			log.Printf("chat: attempt write failed for %s: %v", userID, err)
		}
	}
	*session = services.QuizSession{}
}

func buildChatPrimer(resources []models.Resource) string {
	if len(resources) == 0 {
		return fmt.Sprintf(chatSystemPrimerFmt, "(none yet)")
	}
	var b strings.Builder
	for _, r := range resources {
		fmt.Fprintf(&b, "- %s: %s\n", r.Name, truncateRunes(r.Content, chatExcerptLimit))
	}
	return fmt.Sprintf(chatSystemPrimerFmt, b.String())
}

// truncateRunes caps s at max characters, never splitting a multibyte
// rune mid-sequence.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// logChatExchange records the turn for history; a failed write is
// logged and otherwise ignored so the reply still reaches the user.
func logChatExchange(db *gorm.DB, userID, message, response string) {
	if runes := []rune(response); len(runes) > chatLogResponseCap {
		response = string(runes[:chatLogResponseCap])
	}
	entry := models.ChatMessage{
		ID:       uuid.New(),
		UserID:   userID,
		Message:  message,
		Response: response,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("chat: history write failed for %s: %v", userID, err)
	}
}

// GET /api/chat/history — the user's chat log, newest first.
func GetChatHistory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	var messages []models.ChatMessage
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(50).Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}
