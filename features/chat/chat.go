// Package chat answers user messages: it classifies intent, pulls supporting
// passages from the knowledge base, and generates a response with the
// language model. Crisis messages skip generation and get a fixed routing
// reply immediately.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mindwell/backend/internal/event"
	"mindwell/backend/internal/intent"
)

const systemPrompt = "You are a compassionate mental wellness assistant. Provide helpful, supportive responses to help users navigate their mental health journey."

const crisisResponse = "I'm concerned about what you're going through. This sounds urgent - let me immediately connect you with our crisis intervention team who are specially trained to help."

const fallbackResponse = "I understand you're looking for help. Let me connect you with the right specialist. Could you tell me a bit more about what you're experiencing?"

// intentContexts maps a classified intent to the retrieval topic. Navigation
// has no wellness topic and retrieves without enhancement.
var intentContexts = map[string]string{
	"stress":     "stress",
	"anxiety":    "anxiety",
	"depression": "depression",
	"crisis":     "crisis",
}

type Classifier interface {
	Classify(message string, history []string) intent.Result
}

type ContextProvider interface {
	ResponseContext(ctx context.Context, query, contextType string) (string, int)
}

type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Response is the answer returned for one user message.
type Response struct {
	Response   string  `json:"response"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Service    string  `json:"suggested_service"`
	Sources    int     `json:"sources_used"`
	ModelUsed  string  `json:"model_used"`
}

type Service struct {
	classifier Classifier
	contexts   ContextProvider
	generator  Generator
	emitter    *event.Emitter
}

func NewService(classifier Classifier, contexts ContextProvider, generator Generator, emitter *event.Emitter) *Service {
	return &Service{
		classifier: classifier,
		contexts:   contexts,
		generator:  generator,
		emitter:    emitter,
	}
}

// Respond produces a reply to message. Retrieval and generation failures
// degrade gracefully: the user always gets an answer.
func (s *Service) Respond(ctx context.Context, userID int, message string, history []string) Response {
	result := s.classifier.Classify(message, history)

	if result.Priority == intent.PriorityUrgent {
		slog.WarnContext(ctx, "crisis message detected, routing to intervention", "user_id", userID)
		resp := Response{
			Response:   crisisResponse,
			Intent:     result.Intent,
			Confidence: result.Confidence,
			Service:    result.Service,
			ModelUsed:  "crisis_template",
		}
		s.emit(userID, resp)
		return resp
	}

	ragContext, numSources := s.contexts.ResponseContext(ctx, message, intentContexts[result.Intent])

	prompt := fmt.Sprintf("User: %s\nAssistant:", message)
	if ragContext != "" {
		prompt = fmt.Sprintf("Context: %s\nUser: %s\nAssistant:", ragContext, message)
	}

	answer, err := s.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			slog.ErrorContext(ctx, "generation failed, using fallback", "error", err)
		}
		resp := Response{
			Response:   fallbackResponse,
			Intent:     result.Intent,
			Confidence: result.Confidence,
			Service:    result.Service,
			ModelUsed:  "fallback_template",
		}
		s.emit(userID, resp)
		return resp
	}

	resp := Response{
		Response:   strings.TrimSpace(answer),
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Service:    result.Service,
		Sources:    numSources,
		ModelUsed:  "ollama",
	}
	s.emit(userID, resp)
	return resp
}

func (s *Service) emit(userID int, resp Response) {
	s.emitter.Emit(event.TopicChatCompleted, event.ChatCompleted{
		UserID:     userID,
		Intent:     resp.Intent,
		NumSources: resp.Sources,
	})
}
