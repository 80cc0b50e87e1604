package service

import "fmt"

// DefaultSystemPrompt constrains answers to the retrieved excerpts.
const DefaultSystemPrompt = `You are a helpful assistant that answers questions strictly using the retrieved book context.
Always cite the used page ranges. If the answer is not present in the provided context,
reply: "I don't know based on the book excerpts provided."

Keep answers short, direct, and faithful to the text.`

// BuildPrompt assembles the final LLM prompt from the context block and
// the user question.
func BuildPrompt(contextText, question string) string {
	return fmt.Sprintf(
		"%s\n\nCONTEXT:\n%s\n\nQUESTION: %s\n\nProvide a concise answer and list which sources you used.",
		DefaultSystemPrompt, contextText, question,
	)
}
