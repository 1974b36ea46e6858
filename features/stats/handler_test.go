package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mindwell/backend/internal/rag"
)

type MockKnowledgeBase struct{ mock.Mock }

func (m *MockKnowledgeBase) Statistics(ctx context.Context) (rag.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(rag.Stats), args.Error(1)
}

type MockMoodStore struct{ mock.Mock }

func (m *MockMoodStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestHandler_GetStats(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockKnowledgeBase, *MockMoodStore)
		wantStatus int
		checkBody  func(*testing.T, map[string]interface{})
	}{
		{
			name: "Success",
			setupMocks: func(kb *MockKnowledgeBase, m *MockMoodStore) {
				kb.On("Statistics", mock.Anything).Return(rag.Stats{
					TotalChunks:        42,
					EmbeddingDimension: 768,
					IndexSize:          42,
					DocumentsBySource:  map[string]int{"anxiety.txt": 42},
				}, nil)
				m.On("Count", mock.Anything).Return(17, nil)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.EqualValues(t, 42, data["total_chunks"])
				assert.EqualValues(t, 768, data["embedding_dimension"])
				assert.EqualValues(t, 17, data["mood_entries"])
			},
		},
		{
			name: "Knowledge Base Error",
			setupMocks: func(kb *MockKnowledgeBase, m *MockMoodStore) {
				kb.On("Statistics", mock.Anything).Return(rag.Stats{}, errors.New("store error"))
			},
			wantStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body, "error")
			},
		},
		{
			name: "Mood Store Error",
			setupMocks: func(kb *MockKnowledgeBase, m *MockMoodStore) {
				kb.On("Statistics", mock.Anything).Return(rag.Stats{}, nil)
				m.On("Count", mock.Anything).Return(0, errors.New("db error"))
			},
			wantStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body, "error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := new(MockKnowledgeBase)
			moods := new(MockMoodStore)
			tt.setupMocks(kb, moods)

			h := NewHandler(kb, moods)
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			rec := httptest.NewRecorder()
			h.GetStats(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			tt.checkBody(t, body)
		})
	}
}
