package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunker_Chunk(t *testing.T) {
	t.Run("Empty Input Yields No Chunks", func(t *testing.T) {
		c := NewTextChunker(500, 50)
		assert.Empty(t, c.Chunk("", "empty.txt"))
		assert.Empty(t, c.Chunk("   \n\t  ", "blank.txt"))
	})

	t.Run("Two Short Sentences One Chunk", func(t *testing.T) {
		c := NewTextChunker(500, 50)
		// 40 characters across two sentences, well under the chunk size.
		text := "Breathe in slowly. Hold for four counts."
		chunks := c.Chunk(text, "breathing.txt")

		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Content, "Breathe in slowly")
		assert.Contains(t, chunks[0].Content, "Hold for four counts")
		assert.Equal(t, "breathing.txt", chunks[0].Source)
		assert.Equal(t, 0, chunks[0].ChunkID)
		assert.Equal(t, "content_chunk", chunks[0].Metadata["type"])
	})

	t.Run("Chunk IDs Restart Per Call", func(t *testing.T) {
		c := NewTextChunker(40, 10)
		text := "First sentence goes here with some words. Second sentence also has plenty of words. Third one closes it out for good."

		chunks := c.Chunk(text, "a.txt")
		require.Greater(t, len(chunks), 1)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.ChunkID)
		}

		again := c.Chunk(text, "b.txt")
		assert.Equal(t, 0, again[0].ChunkID)
	})

	t.Run("Overlap Carries Trailing Context", func(t *testing.T) {
		c := NewTextChunker(40, 15)
		text := "The first sentence fills the buffer up. A following sentence arrives later."
		chunks := c.Chunk(text, "overlap.txt")

		require.Len(t, chunks, 2)
		first := chunks[0].Content
		tail := strings.TrimSpace(first[len(first)-15:])
		assert.True(t, strings.HasPrefix(chunks[1].Content, tail),
			"second chunk %q should start with the trailing overlap of %q", chunks[1].Content, first)
		assert.Contains(t, chunks[1].Content, "A following sentence arrives later")
	})

	t.Run("Overlap Never Splits Multi-Byte Characters", func(t *testing.T) {
		c := NewTextChunker(20, 2)
		text := "Une pause au café. More plain words follow here. Fin du texte ici."
		chunks := c.Chunk(text, "accents.txt")
		require.Len(t, chunks, 3)

		for _, chunk := range chunks {
			assert.True(t, utf8.ValidString(chunk.Content),
				"chunk %d is not valid UTF-8: %q", chunk.ChunkID, chunk.Content)
		}
		// The first chunk ends on "é."; the two-rune seed must carry the
		// whole character, not its trailing byte.
		assert.True(t, strings.HasPrefix(chunks[1].Content, "é."),
			"second chunk %q should start with the overlap seed", chunks[1].Content)
	})

	t.Run("Oversized Sentence Kept Whole", func(t *testing.T) {
		c := NewTextChunker(30, 5)
		long := "this single sentence is far longer than the configured chunk size and must not be split"
		chunks := c.Chunk(long+".", "long.txt")

		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Content, long)
	})

	t.Run("No Word Loss Across Chunks", func(t *testing.T) {
		c := NewTextChunker(60, 10)
		text := "Anxiety responds well to slow breathing. Naming five visible objects grounds attention. Gentle walks lower the body's stress response. Sleep regularity supports mood stability."
		chunks := c.Chunk(text, "grounding.txt")
		require.NotEmpty(t, chunks)

		var all strings.Builder
		for _, chunk := range chunks {
			all.WriteString(chunk.Content)
			all.WriteString(" ")
		}
		for _, word := range strings.Fields(strings.ReplaceAll(text, ".", "")) {
			assert.Contains(t, all.String(), word)
		}
	})
}
