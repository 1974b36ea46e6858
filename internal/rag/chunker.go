package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// TextChunker splits extracted text into overlapping segments bounded by
// sentence breaks. A segment only closes at a '.' boundary, so a sentence is
// never split mid-word; a single sentence longer than the chunk size is kept
// whole.
type TextChunker struct {
	chunkSize int
	overlap   int
}

func NewTextChunker(chunkSize, overlap int) *TextChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}
	return &TextChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits content into ordered chunks attributed to source. Chunk IDs
// are a zero-based counter local to this call. Blank input yields no chunks.
func (c *TextChunker) Chunk(content, source string) []DocumentChunk {
	var chunks []DocumentChunk
	var current string
	chunkID := 0

	for _, sentence := range strings.Split(content, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if utf8.RuneCountInString(current)+utf8.RuneCountInString(sentence) > c.chunkSize && current != "" {
			chunks = append(chunks, c.seal(current, source, chunkID))
			chunkID++

			// Seed the next buffer with the trailing overlap of the sealed
			// one so context carries across the boundary. Sized and sliced
			// in runes, so the cut can never land inside a multi-byte
			// character.
			overlapText := current
			if runes := []rune(current); len(runes) > c.overlap {
				overlapText = string(runes[len(runes)-c.overlap:])
			}
			current = overlapText + " " + sentence + "."
		} else {
			current += " " + sentence + "."
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, c.seal(current, source, chunkID))
	}

	return chunks
}

func (c *TextChunker) seal(buffer, source string, chunkID int) DocumentChunk {
	return DocumentChunk{
		Content: strings.TrimSpace(buffer),
		Source:  source,
		ChunkID: chunkID,
		Metadata: map[string]any{
			"length": len(buffer),
			"type":   "content_chunk",
		},
	}
}
