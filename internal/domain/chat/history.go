package chat

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/innercalm/backend/internal/infra/llm/openai"
)

// tokenCounter estimates prompt token usage for history trimming.
type tokenCounter struct {
	encoder *tiktoken.Tiktoken
}

func newTokenCounter(model string) *tokenCounter {
	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoder, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			encoder = nil
		}
	}
	return &tokenCounter{encoder: encoder}
}

func (tc *tokenCounter) count(text string) int {
	if tc.encoder == nil {
		// Rough heuristic when no encoding is available.
		return len(text)/4 + 1
	}
	return len(tc.encoder.Encode(text, nil, nil))
}

// trimHistory keeps the most recent messages that fit both the message cap
// and the prompt token budget. Messages arrive oldest first and are returned
// oldest first.
func trimHistory(messages []openai.Message, maxMessages, tokenBudget int, counter *tokenCounter) []openai.Message {
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	if tokenBudget <= 0 || counter == nil {
		return messages
	}

	total := 0
	cut := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		total += counter.count(messages[i].Content) + perMessageOverhead
		if total > tokenBudget {
			break
		}
		cut = i
	}
	return messages[cut:]
}

// Approximation of the per-message framing overhead in the chat format.
const perMessageOverhead = 4
