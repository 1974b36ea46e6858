package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindwell/backend/internal/document"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(
		document.NewProcessor(),
		NewTextChunker(500, 50),
		NewEmbeddingEngine(&stubProvider{}),
		NewLocalBackend(),
		50,
	)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStore_AddDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Directory Is Hard Error", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddDocuments(ctx, filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("Registry And Index Stay Aligned", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "anxiety.txt", "Anxiety often shows up as racing thoughts before sleep. Slow breathing calms the panic response. Naming the feeling out loud reduces its grip on attention.")
		writeDoc(t, dir, "stress.txt", "Workplace stress builds when recovery time disappears. Short breaks between tasks protect focus. A walk outside resets the stress response quickly.")

		s := newTestStore(t)
		added, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)
		require.Greater(t, added, 0)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, added, stats.TotalChunks)
		assert.Equal(t, stats.TotalChunks, stats.IndexSize)
		assert.Equal(t, 2, len(stats.DocumentsBySource))
	})

	t.Run("Minimum Content Boundary", func(t *testing.T) {
		dir := t.TempDir()
		// 49 characters of content: below the threshold, skipped.
		short := strings.Repeat("a", 49)
		require.Len(t, short, 49)
		writeDoc(t, dir, "short.txt", short)
		// Exactly 50 characters: processed.
		exact := strings.Repeat("b", 50)
		writeDoc(t, dir, "exact.txt", exact)
		// 30 accented characters span 60 bytes; the threshold counts
		// characters, so this is still skipped.
		accented := strings.Repeat("é", 30)
		require.Len(t, accented, 60)
		writeDoc(t, dir, "accents.txt", accented)

		s := newTestStore(t)
		added, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.NotContains(t, stats.DocumentsBySource, "short.txt")
		assert.NotContains(t, stats.DocumentsBySource, "accents.txt")
		assert.Contains(t, stats.DocumentsBySource, "exact.txt")
		assert.Greater(t, added, 0)
	})

	t.Run("Unsupported And Corrupt Files Skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "broken.pdf", "not really a pdf, but long enough that it would pass the content check")
		writeDoc(t, dir, "data.csv", strings.Repeat("a,b,c\n", 20))
		writeDoc(t, dir, "good.txt", "Grounding techniques anchor attention to the present moment. Five senses checks work almost anywhere. Practice makes them automatic under stress.")

		s := newTestStore(t)
		added, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"good.txt"}, keys(stats.DocumentsBySource))
		assert.Greater(t, added, 0)
	})

	t.Run("Embedding Failure Abandons Document Only", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "doc.txt", "Routine sleep schedules stabilize mood over weeks. Morning light exposure helps regulate the cycle. Caffeine after noon works against both.")

		s := NewStore(
			document.NewProcessor(),
			NewTextChunker(500, 50),
			NewEmbeddingEngine(&stubProvider{err: assert.AnError}),
			NewLocalBackend(),
			50,
		)
		added, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 0, added)
	})
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Store Returns Empty", func(t *testing.T) {
		s := newTestStore(t)
		results, err := s.Search(ctx, "anything at all", 5, 0.05)
		assert.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Threshold Filters But Best Match Survives", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "anxiety.txt", "Anxiety and panic respond to slow diaphragmatic breathing. Panic attacks peak and pass within minutes. Anxiety shrinks when it is named and observed.")

		s := newTestStore(t)
		_, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)

		// A threshold no real score can clear still yields the single best hit.
		results, err := s.Search(ctx, "anxiety and panic", 3, 100.0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "anxiety.txt", results[0].Chunk.Source)
	})

	t.Run("Results Ordered By Score", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "anxiety.txt", "Anxiety and panic are common and treatable with practiced breathing skills and steady support from others nearby.")
		writeDoc(t, dir, "sleep.txt", "Sleep routines shape how the brain consolidates difficult emotional experiences during the overnight hours of rest.")

		s := newTestStore(t)
		_, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)

		results, err := s.Search(ctx, "panic and anxiety help", 2, 0.0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
		assert.Equal(t, "anxiety.txt", results[0].Chunk.Source)
	})

	t.Run("Query Embedding Failure Propagates As Error", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "doc.txt", "Consistent daily movement lowers baseline stress levels. Even ten minutes of walking counts toward the habit.")

		provider := &stubProvider{}
		s := NewStore(document.NewProcessor(), NewTextChunker(500, 50), NewEmbeddingEngine(provider), NewLocalBackend(), 50)
		_, err := s.AddDocuments(ctx, dir)
		require.NoError(t, err)

		provider.err = assert.AnError
		_, err = s.Search(ctx, "stress", 3, 0.05)
		assert.Error(t, err)
	})
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	docsDir := t.TempDir()
	storeDir := t.TempDir()

	writeDoc(t, docsDir, "anxiety.txt", "Anxiety management starts with noticing early body signals. Tight shoulders and shallow breath arrive before the panic does. Catching them early widens the window for action.")

	s := newTestStore(t)
	_, err := s.AddDocuments(ctx, docsDir)
	require.NoError(t, err)
	require.NoError(t, s.SaveIndex(ctx, storeDir))

	fresh := NewStore(document.NewProcessor(), NewTextChunker(500, 50), NewEmbeddingEngine(&stubProvider{}), NewLocalBackend(), 50)
	count, err := fresh.LoadIndex(ctx, storeDir)
	require.NoError(t, err)
	require.Greater(t, count, 0)

	wantStats, err := s.Stats(ctx)
	require.NoError(t, err)
	gotStats, err := fresh.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantStats, gotStats)

	want, err := s.Search(ctx, "anxiety and panic", 3, 0.05)
	require.NoError(t, err)
	got, err := fresh.Search(ctx, "anxiety and panic", 3, 0.05)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk.Source, got[i].Chunk.Source)
		assert.Equal(t, want[i].Chunk.ChunkID, got[i].Chunk.ChunkID)
		assert.InDelta(t, float64(want[i].Score), float64(got[i].Score), 1e-6)
	}
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
