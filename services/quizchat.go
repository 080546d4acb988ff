package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/quizmeai/quizme-backend/models"
)

// ReplyKind classifies one assistant reply inside a quiz conversation.
type ReplyKind int

const (
	ReplyChat ReplyKind = iota
	ReplyQuizStart
	ReplyQuestion
	ReplyFeedbackCorrect
	ReplyFeedbackIncorrect
	ReplySummary
)

// QuestionEval is one completed question of an in-progress quiz.
type QuestionEval struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// QuizSession is the transient conversation state of one chat session.
// It is never persisted; a finished session is converted into a
// QuizAttempt and discarded. The session keeps the invariant
// 0 <= CorrectAnswers <= CurrentQuestion <= TotalQuestions.
type QuizSession struct {
	InProgress      bool           `json:"in_progress"`
	Summarizing     bool           `json:"summarizing"`
	AwaitingAnswer  bool           `json:"awaiting_answer"`
	CurrentQuestion int            `json:"current_question"`
	TotalQuestions  int            `json:"total_questions"`
	CorrectAnswers  int            `json:"correct_answers"`
	CourseID        string         `json:"course_id,omitempty"`
	LastQuestion    string         `json:"last_question,omitempty"`
	Evaluations     []QuestionEval `json:"evaluations"`
}

var (
	startMarkerRe = regexp.MustCompile(`(?i)Starting quiz with (\d+) questions`)
	controlTagRe  = regexp.MustCompile(`^\s*\[(QUIZ_START|QUESTION|FEEDBACK|SUMMARY)(?:\s+([^\]]+))?\]\s*`)
)

// IsQuizIntent reports whether a user message asks to start a quiz.
func IsQuizIntent(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quiz") || strings.Contains(lower, "test me")
}

// ClassifyReply inspects an assistant reply and returns its kind, the
// announced question count (for quiz starts) and the prose with any
// leading control tag stripped.
//
// The generator is primed to prefix every reply with a control tag such
// as "[QUESTION]" or "[FEEDBACK correct]". When the tag is present it is
// authoritative; otherwise classification falls back to the substring
// heuristics the product originally shipped with, with one fix: a reply
// saying "incorrect" or "not correct" is never treated as correct.
func ClassifyReply(inProgress, awaitingAnswer bool, reply string) (ReplyKind, int, string) {
	if m := controlTagRe.FindStringSubmatch(reply); m != nil {
		prose := reply[len(m[0]):]
		arg := strings.ToLower(strings.TrimSpace(m[2]))
		switch m[1] {
		case "QUIZ_START":
			count := DefaultQuestionCount
			if n, err := strconv.Atoi(arg); err == nil && n > 0 {
				count = clampQuestionCount(n)
			}
			return ReplyQuizStart, count, prose
		case "QUESTION":
			return ReplyQuestion, 0, prose
		case "FEEDBACK":
			if arg == "correct" {
				return ReplyFeedbackCorrect, 0, prose
			}
			return ReplyFeedbackIncorrect, 0, prose
		case "SUMMARY":
			return ReplySummary, 0, prose
		}
	}

	if !inProgress {
		if m := startMarkerRe.FindStringSubmatch(reply); m != nil {
			count := DefaultQuestionCount
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				count = clampQuestionCount(n)
			}
			return ReplyQuizStart, count, reply
		}
		return ReplyChat, 0, reply
	}

	if awaitingAnswer {
		if feedbackSoundsCorrect(reply) {
			return ReplyFeedbackCorrect, 0, reply
		}
		return ReplyFeedbackIncorrect, 0, reply
	}

	if strings.Contains(reply, "?") {
		return ReplyQuestion, 0, reply
	}
	return ReplyChat, 0, reply
}

func feedbackSoundsCorrect(reply string) bool {
	lower := strings.ToLower(reply)
	if strings.Contains(lower, "incorrect") || strings.Contains(lower, "not correct") {
		return false
	}
	return strings.Contains(lower, "correct") ||
		strings.Contains(lower, "that's right") ||
		strings.Contains(lower, "well done")
}

// ObserveReply advances the session with one assistant reply and returns
// the prose to show the user. lastUserMessage is the message the reply
// responds to; when the reply is answer feedback it is recorded as the
// submitted answer.
func (s *QuizSession) ObserveReply(reply, lastUserMessage string) string {
	kind, count, prose := ClassifyReply(s.InProgress, s.AwaitingAnswer, reply)

	switch kind {
	case ReplyQuizStart:
		if !s.InProgress {
			s.InProgress = true
			s.Summarizing = false
			s.AwaitingAnswer = false
			s.CurrentQuestion = 0
			s.CorrectAnswers = 0
			s.TotalQuestions = count
			s.Evaluations = nil
		}

	case ReplyQuestion:
		if s.InProgress && !s.AwaitingAnswer {
			if s.CurrentQuestion >= s.TotalQuestions {
				s.Summarizing = true
			} else {
				s.CurrentQuestion++
				s.AwaitingAnswer = true
				s.LastQuestion = prose
			}
		}

	case ReplyFeedbackCorrect, ReplyFeedbackIncorrect:
		if s.InProgress && s.AwaitingAnswer {
			correct := kind == ReplyFeedbackCorrect
			if correct && s.CorrectAnswers < s.CurrentQuestion {
				s.CorrectAnswers++
			}
			question := s.LastQuestion
			if question == "" {
				question = "Question"
			}
			s.Evaluations = append(s.Evaluations, QuestionEval{
				Question:      question,
				UserAnswer:    lastUserMessage,
				CorrectAnswer: "Correct answer",
				IsCorrect:     correct,
				Explanation:   prose,
			})
			s.AwaitingAnswer = false
			if s.CurrentQuestion >= s.TotalQuestions {
				s.Summarizing = true
			}
		}

	case ReplySummary:
		if s.InProgress {
			s.Summarizing = true
			s.InProgress = false
		}
	}

	return prose
}

// EndQuiz short-circuits an active quiz straight to summarizing,
// regardless of how many questions have been asked.
func (s *QuizSession) EndQuiz() {
	if s.InProgress {
		s.Summarizing = true
		s.InProgress = false
	}
}

// Finished reports whether the session has reached its summary phase.
func (s *QuizSession) Finished() bool {
	return s.Summarizing
}

// BuildAttempt converts a finished session into the QuizAttempt record
// to persist. The quiz reference falls back to "general" when the
// session was not bound to a course.
func (s *QuizSession) BuildAttempt(userID string) *models.QuizAttempt {
	quizRef := s.CourseID
	if quizRef == "" {
		quizRef = "general"
	}
	answers := make(datatypes.JSONSlice[models.AttemptAnswer], 0, len(s.Evaluations))
	for _, e := range s.Evaluations {
		answers = append(answers, models.AttemptAnswer{
			QuestionID: uuid.NewString(),
			UserAnswer: e.UserAnswer,
			IsCorrect:  e.IsCorrect,
		})
	}
	return &models.QuizAttempt{
		ID:             uuid.New(),
		QuizID:         quizRef,
		UserID:         userID,
		Score:          s.CorrectAnswers,
		TotalQuestions: s.TotalQuestions,
		Answers:        answers,
	}
}

// Validate checks the session invariant; it is cheap enough to call on
// every turn and exists mostly for the test suite.
func (s *QuizSession) Validate() error {
	if s.CorrectAnswers < 0 || s.CurrentQuestion < 0 || s.TotalQuestions < 0 {
		return fmt.Errorf("negative counter in session: %+v", s)
	}
	if s.CorrectAnswers > s.CurrentQuestion {
		return fmt.Errorf("correct answers %d exceed current question %d", s.CorrectAnswers, s.CurrentQuestion)
	}
	if s.CurrentQuestion > s.TotalQuestions {
		return fmt.Errorf("current question %d exceeds total %d", s.CurrentQuestion, s.TotalQuestions)
	}
	return nil
}
