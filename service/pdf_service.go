package service

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"bookrag/types"
	"bookrag/utils"
)

// ErrNoPages marks a document whose extraction produced zero pages,
// e.g. a scanned book with no text layer.
var ErrNoPages = errors.New("extraction produced no pages")

// PDFService extracts per-page text from a book PDF.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractPages returns one Page per PDF page, numbered from 1. A page
// whose text cannot be decoded yields empty text rather than failing
// the whole document; page numbering stays aligned with the source.
func (s *PDFService) ExtractPages(path string) ([]types.Page, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer file.Close()

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPages)
	}

	metadata := map[string]string{
		"file":  filepath.Base(path),
		"title": utils.BaseNameWithoutExt(path),
	}

	pages := make([]types.Page, 0, totalPages)
	for num := 1; num <= totalPages; num++ {
		page := reader.Page(num)
		text := ""
		if !page.V.IsNull() {
			content, err := page.GetPlainText(nil)
			if err != nil {
				log.Printf("Failed to extract page %d of %s: %v", num, filepath.Base(path), err)
			} else {
				text = content
			}
		}
		pages = append(pages, types.Page{Number: num, Text: text, Metadata: metadata})
	}
	return pages, nil
}

var chapterHeading = regexp.MustCompile(`(?i)^(chapter|part|book)\s+[IVXLC0-9]+`)

// GuessChapters scans the top lines of each raw page for heading-like
// lines and derives page spans from them. Heuristic only: books without
// recognizable headings yield an empty list.
func GuessChapters(pages []types.Page) []types.Chapter {
	var chapters []types.Chapter
	var current *types.Chapter

	for _, page := range pages {
		heading := findHeading(page.Text)
		if heading == "" {
			continue
		}
		if current != nil {
			current.EndPage = page.Number - 1
			chapters = append(chapters, *current)
		}
		current = &types.Chapter{Chapter: heading, StartPage: page.Number}
	}
	if current != nil {
		current.EndPage = pages[len(pages)-1].Number
		chapters = append(chapters, *current)
	}
	return chapters
}

func findHeading(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if chapterHeading.MatchString(line) {
			return line
		}
	}
	return ""
}
