package openai

import (
	"fmt"
	"strings"

	"mailmind-backend/internal/generation"
)

const systemPrompt = "You are an email reply assistant. Rewrite the draft reply so it is grounded in the provided reference documents. Keep the sender's intent and tone. Respond with the reply text only, no preamble."

func buildMessages(input generation.ReplyInput) []chatMessage {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
	}
	if len(input.Snippets) > 0 {
		messages = append(messages, chatMessage{Role: "system", Content: buildContextBlock(input.Snippets)})
	}
	messages = append(messages, chatMessage{Role: "user", Content: buildUserPrompt(input)})
	return messages
}

// buildContextBlock renders the retrieved snippets in rank order. The order is
// the relevance signal for the model and must not be re-sorted here.
func buildContextBlock(snippets []generation.ContextSnippet) string {
	var b strings.Builder
	b.WriteString("Reference documents, most relevant first:\n")
	for i, s := range snippets {
		fmt.Fprintf(&b, "\n[%d] %s (relevance %.2f)\n%s\n", i+1, s.Title, s.Similarity, s.Content)
	}
	return b.String()
}

func buildUserPrompt(input generation.ReplyInput) string {
	var b strings.Builder
	if strings.TrimSpace(input.ThreadSubject) != "" {
		fmt.Fprintf(&b, "Thread subject: %s\n\n", input.ThreadSubject)
	}
	b.WriteString("Draft reply to improve:\n")
	b.WriteString(input.Content)
	return b.String()
}
