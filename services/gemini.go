package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// ChatTurn is one role-tagged message of a conversation transcript.
type ChatTurn struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// CompleteFunc turns a single prompt into generated text.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// ChatFunc turns a system primer plus a transcript into the next
// assistant reply.
type ChatFunc func(ctx context.Context, system string, turns []ChatTurn) (string, error)

// Complete and CompleteChat are the process-wide text completion
// entry points. Tests swap them for deterministic stand-ins.
var (
	Complete     CompleteFunc = GeminiGenerateText
	CompleteChat ChatFunc     = GeminiGenerateChat
)

// GeminiGenerateText sends one prompt to Gemini and returns the raw text.
func GeminiGenerateText(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("cannot create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no usable candidates")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GeminiGenerateChat replays the transcript as chat history and asks
// Gemini for the next reply, with the system primer attached.
func GeminiGenerateChat(ctx context.Context, system string, turns []ChatTurn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("cannot create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	history := turns[:len(turns)-1]
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no usable candidates")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
