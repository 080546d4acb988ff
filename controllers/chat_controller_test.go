package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizmeai/quizme-backend/models"
	"github.com/quizmeai/quizme-backend/services"
)

type chatResponse struct {
	Reply   string               `json:"reply"`
	Session services.QuizSession `json:"session"`
}

func stubCompleteChat(fn services.ChatFunc) func() {
	old := services.CompleteChat
	services.CompleteChat = fn
	return func() { services.CompleteChat = old }
}

func TestChatInvalidBody(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"messages": []gin.H{}})
	wantStatus(t, w, http.StatusBadRequest)
}

// Asking for a quiz with no materials on file must answer directly
// instead of letting the model invent a quiz; the reply carries no quiz
// start marker so no session begins.
func TestChatQuizIntentWithoutResources(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		t.Fatal("completion should not be called without resources on a quiz intent")
		return "", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId": "u1",
		"messages": []gin.H{
			{"role": "user", "content": "quiz me on my notes"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if strings.Contains(resp.Reply, "Starting quiz with") {
		t.Errorf("reply must not start a quiz: %q", resp.Reply)
	}
	if !strings.Contains(strings.ToLower(resp.Reply), "material") {
		t.Errorf("reply should point at missing materials: %q", resp.Reply)
	}
	if resp.Session.InProgress {
		t.Error("session must stay idle")
	}

	var logged models.ChatMessage
	if err := db.First(&logged, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("exchange not logged: %v", err)
	}
	if logged.Message != "quiz me on my notes" {
		t.Errorf("logged message = %q", logged.Message)
	}
}

func TestChatPrimerCarriesResources(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	resource := models.Resource{ID: uuid.New(), Name: "Krebs cycle notes",
		Kind: models.ResourceText, Content: strings.Repeat("citrate ", 60), UserID: "u1"}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}

	var gotSystem string
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		gotSystem = system
		return "The Krebs cycle happens in the mitochondrial matrix.", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId": "u1",
		"messages": []gin.H{
			{"role": "user", "content": "where does the krebs cycle happen?"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if resp.Reply != "The Krebs cycle happens in the mitochondrial matrix." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if !strings.Contains(gotSystem, "Krebs cycle notes") {
		t.Error("primer missing resource name")
	}
	// Excerpts are truncated, not inlined whole.
	if strings.Count(gotSystem, "citrate") > 30 {
		t.Error("primer carries untruncated resource content")
	}
}

// A session bound to a course only sees that course's materials.
func TestChatPrimerFilteredByCourse(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	courseID := uuid.NewString()
	inCourse := models.Resource{ID: uuid.New(), Name: "in-course notes",
		Kind: models.ResourceText, Content: "krebs", UserID: "u1",
		CourseIDs: []string{courseID}}
	loose := models.Resource{ID: uuid.New(), Name: "loose notes",
		Kind: models.ResourceText, Content: "glycolysis", UserID: "u1"}
	for _, res := range []models.Resource{inCourse, loose} {
		if err := db.Create(&res).Error; err != nil {
			t.Fatalf("seed resource: %v", err)
		}
	}

	var gotSystem string
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		gotSystem = system
		return "Sure.", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId":  "u1",
		"session": gin.H{"course_id": courseID},
		"messages": []gin.H{
			{"role": "user", "content": "let's study"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	if !strings.Contains(gotSystem, "in-course notes") {
		t.Error("primer missing the course's resource")
	}
	if strings.Contains(gotSystem, "loose notes") {
		t.Error("primer carries a resource outside the session's course")
	}
}

// Control tags drive the session but must never reach the user.
func TestChatStripsControlTags(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	resource := models.Resource{ID: uuid.New(), Name: "bio", Kind: models.ResourceText,
		Content: "notes", UserID: "u1"}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}

	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		return "[QUESTION] What is osmosis?", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId":  "u1",
		"session": gin.H{"in_progress": true, "total_questions": 3},
		"messages": []gin.H{
			{"role": "user", "content": "ready"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if resp.Reply != "What is osmosis?" {
		t.Errorf("reply = %q, want the tag stripped", resp.Reply)
	}
	if strings.Contains(resp.Reply, "[") {
		t.Errorf("control tag leaked to the user: %q", resp.Reply)
	}
	if resp.Session.CurrentQuestion != 1 || !resp.Session.AwaitingAnswer {
		t.Errorf("session not advanced: %+v", resp.Session)
	}
}

// The feedback on the last question finishes the quiz: the attempt is
// recorded and the returned session is idle again.
func TestChatQuizCompletionRecordsAttempt(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	resource := models.Resource{ID: uuid.New(), Name: "bio", Kind: models.ResourceText,
		Content: "notes", UserID: "u1"}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}

	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		return "[FEEDBACK correct] Exactly right.", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId": "u1",
		"session": gin.H{
			"in_progress": true, "awaiting_answer": true,
			"current_question": 2, "total_questions": 2, "correct_answers": 1,
			"evaluations": []gin.H{
				{"question": "q1", "user_answer": "a", "is_correct": true},
			},
		},
		"messages": []gin.H{
			{"role": "user", "content": "selective barrier"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if resp.Reply != "Exactly right." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Session.InProgress || resp.Session.Summarizing {
		t.Errorf("session not reset after completion: %+v", resp.Session)
	}

	var attempt models.QuizAttempt
	if err := db.First(&attempt, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("attempt not recorded: %v", err)
	}
	if attempt.Score != 2 || attempt.TotalQuestions != 2 {
		t.Errorf("attempt score %d/%d", attempt.Score, attempt.TotalQuestions)
	}
	if len(attempt.Answers) != 2 {
		t.Errorf("got %d answer records", len(attempt.Answers))
	}
}

// Ending a quiz early skips the model entirely, records the partial
// attempt and resets the session.
func TestChatEndQuiz(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		t.Fatal("ending a quiz must not call the model")
		return "", nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId":  "u1",
		"endQuiz": true,
		"session": gin.H{
			"in_progress": true, "current_question": 1, "total_questions": 5, "correct_answers": 1,
			"evaluations": []gin.H{
				{"question": "q1", "user_answer": "b", "is_correct": true},
			},
		},
		"messages": []gin.H{
			{"role": "user", "content": "end quiz"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if !strings.Contains(resp.Reply, "Quiz ended") {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Session.InProgress || resp.Session.Summarizing {
		t.Errorf("session not reset: %+v", resp.Session)
	}

	var attempt models.QuizAttempt
	if err := db.First(&attempt, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("attempt not recorded: %v", err)
	}
	if attempt.Score != 1 || attempt.TotalQuestions != 5 {
		t.Errorf("attempt score %d/%d", attempt.Score, attempt.TotalQuestions)
	}
}

func TestChatFallbackOnCompletionError(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		return "", errors.New("upstream unavailable")
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId": "u1",
		"messages": []gin.H{
			{"role": "user", "content": "hello there"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	var resp chatResponse
	decodeBody(t, w, &resp)
	if !strings.Contains(resp.Reply, "QuizmeAI") {
		t.Errorf("expected canned greeting, got %q", resp.Reply)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Where("user_id = ?", "u1").Count(&count)
	if count != 1 {
		t.Errorf("fallback exchange not logged, count = %d", count)
	}
}

func TestChatLogsTruncatedResponse(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	// Multibyte content: the cap counts characters, and the cut must
	// not leave a broken rune behind.
	long := strings.Repeat("é", 2500)
	defer stubCompleteChat(func(ctx context.Context, system string, turns []services.ChatTurn) (string, error) {
		return long, nil
	})()

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"userId": "u1",
		"messages": []gin.H{
			{"role": "user", "content": "explain everything"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	// Full reply goes to the client, the log keeps a capped copy.
	var resp chatResponse
	decodeBody(t, w, &resp)
	if utf8.RuneCountInString(resp.Reply) != 2500 {
		t.Errorf("reply length = %d runes", utf8.RuneCountInString(resp.Reply))
	}
	var logged models.ChatMessage
	if err := db.First(&logged, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("exchange not logged: %v", err)
	}
	if utf8.RuneCountInString(logged.Response) != 1000 {
		t.Errorf("logged response length = %d runes, want 1000", utf8.RuneCountInString(logged.Response))
	}
	if !utf8.ValidString(logged.Response) {
		t.Error("logged response is not valid UTF-8")
	}
}

func TestGetChatHistory(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	for _, m := range []models.ChatMessage{
		{ID: uuid.New(), UserID: "u1", Message: "hi", Response: "hello"},
		{ID: uuid.New(), UserID: "u2", Message: "other", Response: "reply"},
	} {
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/chat/history?userId=u1", nil)
	wantStatus(t, w, http.StatusOK)

	var messages []models.ChatMessage
	decodeBody(t, w, &messages)
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Message != "hi" {
		t.Errorf("message = %q", messages[0].Message)
	}
}
