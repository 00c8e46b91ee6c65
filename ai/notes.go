package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptySuggestion = errors.New("model returned no suggestion")

// SuggestSessionNotes asks Gemini for a short free-text summary of a
// finished session. Callers surface errors to staff but must never let
// a failure here block checkout.
func SuggestSessionNotes(ctx context.Context, apiKey string, sessionMinutes int64, itemsOrdered string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	if itemsOrdered == "" {
		itemsOrdered = "none"
	}
	prompt := fmt.Sprintf(`You are a snooker club assistant. Based on the session time and items ordered, suggest notes summarizing the session. Keep it concise, one or two sentences, no preamble.

Session Time: %d minutes
Items Ordered: %s

Suggested Notes:`, sessionMinutes, itemsOrdered)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptySuggestion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	notes := strings.TrimSpace(sb.String())
	if notes == "" {
		return "", ErrEmptySuggestion
	}
	return notes, nil
}
