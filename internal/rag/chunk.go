package rag

// DocumentChunk is the atomic unit of retrievable content. Chunks are created
// by the TextChunker, receive their embedding during ingestion, and are never
// mutated afterwards.
type DocumentChunk struct {
	Content   string         `json:"content"`
	Source    string         `json:"source"`
	ChunkID   int            `json:"chunk_id"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"-"`
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float32
}

// Stats describes the current shape of the knowledge base.
type Stats struct {
	TotalChunks        int            `json:"total_chunks"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	IndexSize          int            `json:"index_size"`
	DocumentsBySource  map[string]int `json:"documents_by_source"`
}
