// Package tokens estimates how many prompt tokens a list of turns will cost.
package tokens

import (
	"fmt"

	"github.com/iamvkosarev/groq-chat-bot/internal/model"
	"github.com/pkoukk/tiktoken-go"
)

// Groq serves models tiktoken has never heard of, so unknown models fall
// back to the cl100k_base encoding. The estimate only has to be good enough
// for history trimming.
const fallbackEncoding = "cl100k_base"

// Each message carries framing tokens around its content in the chat
// completion format, and the reply is primed with a few more.
const (
	tokensPerMessage = 4
	tokensPerReply   = 3
)

type Counter struct{}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Count(turns []model.Turn, modelName string) (int, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("failed to load token encoding: %w", err)
		}
	}

	total := tokensPerReply
	for _, turn := range turns {
		total += tokensPerMessage
		total += len(encoding.Encode(string(turn.Role), nil, nil))
		total += len(encoding.Encode(turn.Content, nil, nil))
	}
	return total, nil
}
