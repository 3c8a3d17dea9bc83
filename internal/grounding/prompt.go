package grounding

import (
	"fmt"

	"github.com/iamvkosarev/groq-chat-bot/internal/model"
)

// SystemPrompt goes into the system turn of every grounded request.
const SystemPrompt = "You are a helpful assistant that answers questions based only on provided file content."

// The template is the sole grounding mechanism: no retrieval, no chunking,
// the whole decoded document is inlined into every request.
const promptTemplate = `You are an AI assistant that answers questions based ONLY on the provided file content.

IMPORTANT RULES:
1. Only answer questions using information that exists in the provided file content
2. If the answer is not in the file content, clearly state "I cannot find this information in the uploaded file"
3. Do not provide information from your general knowledge
4. Be specific and reference the relevant parts of the file when answering

FILE CONTENT:
%s

QUESTION: %s

Please provide an answer based only on the file content above.`

func BuildPrompt(question string, doc model.GroundingDocument) string {
	return fmt.Sprintf(promptTemplate, doc.Text, question)
}
