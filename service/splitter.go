package service

import (
	"strings"

	"github.com/google/uuid"

	"bookrag/types"
)

// Splitter turns a sequence of normalized pages into an ordered stream
// of token-bounded chunks with page provenance. Paragraph boundaries are
// the preferred split points; a paragraph that alone exceeds the budget
// is split at sentence boundaries, and an oversized atomic sentence is
// emitted whole rather than truncated.
type Splitter struct {
	tokens        *TokenCounter
	maxTokens     int
	overlapTokens int
}

func NewSplitter(tokens *TokenCounter, maxTokens, overlapTokens int) *Splitter {
	if maxTokens <= 0 {
		maxTokens = 800
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	return &Splitter{tokens: tokens, maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// Split walks the pages in order and calls emit for every completed
// chunk. Chunks appear in reading order. An emit error aborts the walk
// and is returned unchanged.
func (s *Splitter) Split(pages []types.Page, emit func(types.Chunk) error) error {
	var (
		buffer    string
		startPage int
		endPage   int
		meta      map[string]string
	)

	flush := func(text string, start, end int, md map[string]string) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		return emit(types.Chunk{
			ID:         uuid.NewString(),
			Text:       text,
			TokenCount: s.tokens.CountTokens(text),
			PageStart:  start,
			PageEnd:    end,
			Metadata:   md,
		})
	}

	for _, page := range pages {
		for _, para := range splitParagraphs(page.Text) {
			if buffer == "" {
				startPage = page.Number
			}
			paraTokens := s.tokens.CountTokens(para)
			if s.tokens.CountTokens(buffer)+paraTokens <= s.maxTokens {
				if buffer == "" {
					buffer = para
				} else {
					buffer += "\n\n" + para
				}
				endPage = page.Number
				meta = page.Metadata
				continue
			}

			if buffer != "" {
				// Normal flush: the paragraph would overflow the buffer.
				if err := flush(buffer, startPage, endPage, page.Metadata); err != nil {
					return err
				}
				if tail := s.overlapTail(buffer); tail != "" {
					buffer = tail + "\n\n" + para
				} else {
					buffer = para
				}
				startPage, endPage = page.Number, page.Number
				meta = page.Metadata
				continue
			}

			// The paragraph alone exceeds the budget: fall back to
			// sentence boundaries. The trailing sentence group is not
			// flushed; it seeds the paragraph buffer instead.
			tail, err := s.splitSentences(para, page, flush)
			if err != nil {
				return err
			}
			buffer = tail
			startPage, endPage = page.Number, page.Number
			meta = page.Metadata
		}
	}

	return flush(buffer, startPage, endPage, meta)
}

// splitSentences chunks an oversized paragraph at ". " boundaries,
// flushing completed sentence groups and returning the unflushed tail.
// A single sentence over the budget is kept whole.
func (s *Splitter) splitSentences(para string, page types.Page, flush func(string, int, int, map[string]string) error) (string, error) {
	group := ""
	for _, sentence := range strings.Split(para, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		switch {
		case group == "":
			group = sentence
		case s.tokens.CountTokens(group)+s.tokens.CountTokens(sentence) <= s.maxTokens:
			group += ". " + sentence
		default:
			if err := flush(group, page.Number, page.Number, page.Metadata); err != nil {
				return "", err
			}
			group = sentence
		}
	}
	return group, nil
}

// overlapTail returns the trailing words of a flushed buffer used to
// seed the next chunk. The word budget is 1.5x the configured overlap
// token count, words running shorter than BPE tokens.
func (s *Splitter) overlapTail(buffer string) string {
	if s.overlapTokens <= 0 {
		return ""
	}
	words := strings.Fields(buffer)
	keep := int(float64(s.overlapTokens) * 1.5)
	if keep > len(words) {
		keep = len(words)
	}
	if keep == 0 {
		return ""
	}
	return strings.Join(words[len(words)-keep:], " ")
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			paras = append(paras, part)
		}
	}
	return paras
}
