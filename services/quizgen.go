package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
)

var (
	ErrNoResources      = errors.New("no resources found")
	ErrGenerationFailed = errors.New("failed to generate quiz questions")
	ErrSaveFailed       = errors.New("failed to save quiz")
)

const (
	DefaultQuestionCount = 5
	maxQuestionCount     = 20
)

// clampQuestionCount caps a requested question count; generated quizzes
// and chat-run quizzes share the same ceiling.
func clampQuestionCount(n int) int {
	if n > maxQuestionCount {
		return maxQuestionCount
	}
	return n
}

type GenerateQuizInput struct {
	ResourceIDs   []string
	TopicFocus    string
	QuestionCount int
	UserID        string
	CourseID      string
}

// generatedQuestion mirrors the JSON the model is asked to emit.
type generatedQuestion struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuiz builds a quiz from the selected resources: it concatenates
// their content, asks the completion service for exactly N structured
// questions, and persists quiz plus questions in one transaction so a
// failed generation or save leaves no partial records behind.
func GenerateQuiz(ctx context.Context, db *gorm.DB, input GenerateQuizInput) (*models.Quiz, error) {
	count := input.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}
	count = clampQuestionCount(count)

	var resources []models.Resource
	if err := db.Where("id IN ?", input.ResourceIDs).Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResources, err)
	}
	if len(resources) == 0 {
		return nil, ErrNoResources
	}

	contents := make([]string, 0, len(resources))
	for _, r := range resources {
		contents = append(contents, r.Content)
	}
	combined := strings.Join(contents, "\n\n")

	raw, err := Complete(ctx, buildQuizPrompt(count, input.TopicFocus, combined))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	parsed, err := parseGeneratedQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(parsed) != count {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ErrGenerationFailed, count, len(parsed))
	}

	title := input.TopicFocus
	if title == "" {
		title = "Generated Quiz"
	}

	quiz := &models.Quiz{
		ID:          uuid.New(),
		Title:       title,
		UserID:      input.UserID,
		ResourceIDs: datatypes.JSONSlice[string](input.ResourceIDs),
	}
	if input.CourseID != "" {
		courseID := input.CourseID
		quiz.CourseID = &courseID
	}

	questions := make([]models.QuizQuestion, 0, len(parsed))
	for _, q := range parsed {
		questions = append(questions, models.QuizQuestion{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			Question:      q.Question,
			Options:       datatypes.JSONSlice[string](q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Kind:          NormalizeQuestionKind(q.Type),
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	quiz.Questions = questions
	return quiz, nil
}

func buildQuizPrompt(count int, topicFocus, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quiz questions about the following content.", count)
	if topicFocus != "" {
		fmt.Fprintf(&b, " Focus on the topic %q.", topicFocus)
	}
	b.WriteString(" Include a mix of multiple choice, true/false, and short answer questions.")
	b.WriteString(" Format the response as a JSON array of question objects, each with")
	b.WriteString(" 'type', 'question', 'options' (for multiple choice), 'correctAnswer', and 'explanation' fields.")
	b.WriteString(" Return only valid JSON with no text outside of it.\n\nContent: ")
	b.WriteString(content)
	return b.String()
}

func parseGeneratedQuestions(raw string) ([]generatedQuestion, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.Trim(clean, "`")
	clean = strings.TrimSpace(clean)

	var questions []generatedQuestion
	if err := json.Unmarshal([]byte(clean), &questions); err != nil {
		return nil, fmt.Errorf("unparsable question list: %w", err)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("question %d is missing question text or correct answer", i+1)
		}
	}
	return questions, nil
}

// NormalizeQuestionKind maps a free-form type tag onto the three-way enum
// by substring match.
func NormalizeQuestionKind(tag string) models.QuestionKind {
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "multiple"):
		return models.QuestionMultipleChoice
	case strings.Contains(lower, "true"):
		return models.QuestionTrueFalse
	default:
		return models.QuestionShortAnswer
	}
}
