package service

import (
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many model tokens a text span costs. Counts
// are a budgeting estimate, so counting never fails: when the BPE
// encoding cannot be loaded the counter falls back to whitespace word
// counting with a floor of one token for non-empty text.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTokenCounter() *TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("cl100k_base encoding unavailable, falling back to word counts: %v", err)
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

func (t *TokenCounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if t.enc != nil {
		return len(t.enc.Encode(text, nil, nil))
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 1
	}
	return words
}
