package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag/types"
)

func TestExtractPagesMissingFile(t *testing.T) {
	s := NewPDFService()
	_, err := s.ExtractPages("testdata/does_not_exist.pdf")
	assert.Error(t, err)
}

func TestGuessChapters(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: "Title page"},
		{Number: 2, Text: "CHAPTER I\nIn which we begin"},
		{Number: 3, Text: "more prose"},
		{Number: 4, Text: "noise\nChapter 2\nthe plot thickens"},
		{Number: 5, Text: "the end"},
	}
	chapters := GuessChapters(pages)
	require.Len(t, chapters, 2)
	assert.Equal(t, "CHAPTER I", chapters[0].Chapter)
	assert.Equal(t, 2, chapters[0].StartPage)
	assert.Equal(t, 3, chapters[0].EndPage)
	assert.Equal(t, "Chapter 2", chapters[1].Chapter)
	assert.Equal(t, 4, chapters[1].StartPage)
	assert.Equal(t, 5, chapters[1].EndPage)
}

func TestGuessChaptersNoHeadings(t *testing.T) {
	pages := []types.Page{{Number: 1, Text: "just prose"}}
	assert.Empty(t, GuessChapters(pages))
}
