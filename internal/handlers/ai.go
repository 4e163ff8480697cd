package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type enhanceRequest struct {
	Action string `json:"action"`
}

type enhanceResponse struct {
	Text string `json:"text"`
}

// EnhanceNote runs the note's content through the language model. The note
// itself is not modified; the client decides whether to keep the result.
func (h *Handlers) EnhanceNote(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		h.error(w, "AI processing is not configured", http.StatusServiceUnavailable)
		return
	}

	note, ok := h.requireOwnNote(w, r)
	if !ok {
		return
	}

	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var prompt string
	switch req.Action {
	case "enhance":
		prompt = `Please enhance this text with beautiful formatting:
1. Use proper paragraphs and line breaks
2. Add section headers where appropriate
3. Format lists with bullet points
4. Improve readability with spacing
5. Maintain original meaning
6. Return as properly formatted HTML with <p> tags

Text to enhance:
` + note.Content

	case "summarize":
		prompt = `Create a well-formatted summary:
1. Use <h3> for section headers
2. Format with <ul> and <li> for bullet points
3. Include 1-2 sentence overview first
4. Keep concise but comprehensive
5. Return as HTML

Text to summarize:
` + note.Content

	case "fix":
		prompt = `Correct grammar and spelling while:
1. Preserving all formatting
2. Maintaining original structure
3. Improving readability
4. Returning as HTML with proper <p> tags

Text to correct:
` + note.Content

	default:
		h.error(w, "Invalid action", http.StatusBadRequest)
		return
	}

	resp, err := h.ai.CreateChatCompletion(r.Context(), openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
		TopP:        0.9,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(resp.Choices) == 0 {
		h.serverError(w, r, errors.New("completion returned no choices"))
		return
	}

	responseText := resp.Choices[0].Message.Content
	if !strings.Contains(responseText, "<p>") {
		responseText = "<p>" + strings.ReplaceAll(responseText, "\n\n", "</p><p>") + "</p>"
	}

	h.respond(w, enhanceResponse{Text: responseText}, http.StatusOK)
}
