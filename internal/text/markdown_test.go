package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToPlain(t *testing.T) {
	t.Run("Headings Contribute Words Not Syntax", func(t *testing.T) {
		plain, err := MarkdownToPlain("# Coping With Stress\n\nBreathe slowly.")
		assert.NoError(t, err)
		assert.Contains(t, plain, "Coping With Stress")
		assert.Contains(t, plain, "Breathe slowly.")
		assert.NotContains(t, plain, "#")
	})

	t.Run("Lists Keep Their Words", func(t *testing.T) {
		plain, err := MarkdownToPlain("- grounding exercise\n- sleep hygiene\n")
		assert.NoError(t, err)
		assert.Contains(t, plain, "grounding exercise")
		assert.Contains(t, plain, "sleep hygiene")
		assert.NotContains(t, plain, "- ")
	})

	t.Run("Emphasis Stripped", func(t *testing.T) {
		plain, err := MarkdownToPlain("This is **very** important.")
		assert.NoError(t, err)
		assert.Contains(t, plain, "very")
		assert.NotContains(t, plain, "**")
	})

	t.Run("Entities Decoded", func(t *testing.T) {
		plain, err := MarkdownToPlain(`Say "hello" & relax.`)
		assert.NoError(t, err)
		assert.NotContains(t, plain, "&quot;")
		assert.NotContains(t, plain, "&amp;")
	})
}

func TestCleanMarkdownNoise(t *testing.T) {
	text := "## Table of Contents\n- [Intro](#intro)\n- [Usage](#usage)\nReal content here."
	cleaned := CleanMarkdownNoise(text)
	assert.NotContains(t, cleaned, "#intro")
	assert.Contains(t, cleaned, "Real content here.")
}

func TestStripTags(t *testing.T) {
	stripped := StripTags("<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>")
	assert.Equal(t, "First paragraph", stripped)

	stripped = StripTags("<w:t>one</w:t><w:t>two</w:t>")
	assert.True(t, strings.Contains(stripped, "one two"), "boundary space expected, got %q", stripped)
}
