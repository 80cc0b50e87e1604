package service

import (
	"regexp"
	"strings"
)

// cleanStep is one named rule of the normalization pipeline. Steps run
// in a fixed order; later steps assume earlier ones already ran.
type cleanStep struct {
	name  string
	apply func(string) string
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	// \w is ASCII-only in RE2; accented words need the Unicode classes.
	brokenHyphen = regexp.MustCompile(`([\p{L}\p{N}_])-\n([\p{L}\p{N}_])`)
	// A newline that neither ends a sentence nor starts a heading-like
	// line is a soft wrap from the PDF layout.
	wrappedLine  = regexp.MustCompile(`([^.!?\n])\n([^\nA-Z0-9])`)
	multiNewline = regexp.MustCompile(`\n{2,}`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

var cleanSteps = []cleanStep{
	{"strip-control", func(s string) string { return controlChars.ReplaceAllString(s, " ") }},
	{"heal-hyphenation", func(s string) string { return replaceToFixpoint(brokenHyphen, s, "$1$2") }},
	{"join-wrapped-lines", func(s string) string { return replaceToFixpoint(wrappedLine, s, "$1 $2") }},
	{"collapse-paragraph-breaks", func(s string) string { return multiNewline.ReplaceAllString(s, "\n\n") }},
	{"collapse-spaces", func(s string) string { return spaceRuns.ReplaceAllString(s, " ") }},
	{"trim", strings.TrimSpace},
}

// CleanText normalizes raw extracted page text: control characters are
// replaced with spaces, hyphenated line breaks healed, mid-sentence
// newlines joined, paragraph breaks collapsed to exactly one blank line
// and whitespace runs squeezed. Cleaning is idempotent.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	for _, step := range cleanSteps {
		text = step.apply(text)
	}
	return text
}

// replaceToFixpoint reapplies a rule until the text stops changing.
// Go regexes have no lookaround, so adjacent occurrences share their
// boundary characters and a single pass can miss every other match.
func replaceToFixpoint(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}
