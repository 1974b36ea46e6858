package document

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/nguyenthenguyen/docx"

	"mindwell/backend/internal/text"
)

// Processor extracts plain text from the supported knowledge-base formats.
// Extraction failures are recovered per file: a corrupt document yields empty
// text and a log line, never an aborted ingestion batch.
type Processor struct {
	extractors map[string]func(path string) (string, error)
}

func NewProcessor() *Processor {
	p := &Processor{}
	p.extractors = map[string]func(string) (string, error){
		".pdf":  extractPDF,
		".docx": extractDOCX,
		".txt":  extractTXT,
		".md":   extractMarkdown,
	}
	return p
}

// Supported reports whether the file extension belongs to the processable set.
func (p *Processor) Supported(path string) bool {
	_, ok := p.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Process extracts text from the file at path. Unsupported extensions and
// unreadable files both yield empty text; the skip is logged.
func (p *Processor) Process(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	extract, ok := p.extractors[ext]
	if !ok {
		slog.Warn("unsupported file format, skipping", "path", path, "extension", ext)
		return ""
	}

	content, err := extract(path)
	if err != nil {
		slog.Error("document extraction failed, skipping", "path", path, "error", err)
		return ""
	}
	return content
}

func extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			slog.Warn("failed to read pdf page", "path", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func extractDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	// GetContent returns the raw WordprocessingML of document.xml. Paragraph
	// close tags become newlines so paragraphs keep their separators.
	content := r.Editable().GetContent()

	var paragraphs []string
	for _, block := range strings.Split(content, "</w:p>") {
		para := text.StripTags(block)
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func extractTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return text.MarkdownToPlain(string(data))
}
