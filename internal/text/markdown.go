package text

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	tagRe        = regexp.MustCompile(`<[^<>]+?>`)
	editLinkRe   = regexp.MustCompile(`(?mi)^\[edit[^\]]*\]\([^\)]+\)\s*$`)
	tocRe        = regexp.MustCompile(`(?mi)^#{1,3}\s+(?:table of )?contents?\s*\n(?:\s*[-*]\s*\[.*?\]\(#.*?\)\s*\n)*`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdownNoise removes common documentation boilerplate from markdown
// before extraction. These patterns carry no retrievable knowledge.
func CleanMarkdownNoise(text string) string {
	text = editLinkRe.ReplaceAllString(text, "")
	text = tocRe.ReplaceAllString(text, "")
	return text
}

// MarkdownToPlain renders markdown and strips the markup back out, so that
// headings and list items contribute their words rather than their syntax.
func MarkdownToPlain(md string) (string, error) {
	md = CleanMarkdownNoise(md)

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}

	plain := tagRe.ReplaceAllString(buf.String(), "")
	plain = strings.ReplaceAll(plain, "&quot;", `"`)
	plain = strings.ReplaceAll(plain, "&amp;", "&")
	plain = strings.ReplaceAll(plain, "&lt;", "<")
	plain = strings.ReplaceAll(plain, "&gt;", ">")
	plain = strings.ReplaceAll(plain, "&#39;", "'")
	plain = blankLinesRe.ReplaceAllString(plain, "\n\n")

	return strings.TrimSpace(plain), nil
}

// StripTags removes markup tags from an XML or HTML fragment, inserting a
// space at each boundary so adjacent runs of text do not fuse into one word.
func StripTags(markup string) string {
	stripped := tagRe.ReplaceAllString(markup, " ")
	return strings.Join(strings.Fields(stripped), " ")
}
