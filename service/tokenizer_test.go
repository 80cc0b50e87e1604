package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokensDeterministic(t *testing.T) {
	counter := NewTokenCounter()
	text := "The quick brown fox jumps over the lazy dog."
	first := counter.CountTokens(text)
	assert.Greater(t, first, 0)
	assert.Equal(t, first, counter.CountTokens(text))
}

func TestCountTokensEmpty(t *testing.T) {
	counter := NewTokenCounter()
	assert.Equal(t, 0, counter.CountTokens(""))
}

func TestCountTokensFallback(t *testing.T) {
	counter := &TokenCounter{} // no encoding: word-count fallback
	assert.Equal(t, 2, counter.CountTokens("hello world"))
	assert.Equal(t, 1, counter.CountTokens("   "))
	assert.Equal(t, 0, counter.CountTokens(""))
}
