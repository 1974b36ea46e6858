// Package event publishes domain events to NSQ for downstream consumers.
// Publishing is fire-and-forget: a broker outage never blocks a request.
package event

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	TopicMoodRecorded  = "mood.recorded"
	TopicIndexRebuilt  = "index.rebuilt"
	TopicChatCompleted = "chat.completed"
)

// Publisher matches the nsq.Producer surface the emitter needs.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// Emitter serializes events and hands them to the publisher. A nil Emitter
// is valid and drops everything, so callers need no feature-flag checks.
type Emitter struct {
	pub Publisher
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub}
}

type MoodRecorded struct {
	UserID      int       `json:"user_id"`
	MoodScore   int       `json:"mood_score"`
	SessionType string    `json:"session_type"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type IndexRebuilt struct {
	Chunks     int       `json:"chunks"`
	Documents  int       `json:"documents"`
	FinishedAt time.Time `json:"finished_at"`
}

type ChatCompleted struct {
	UserID     int       `json:"user_id"`
	Intent     string    `json:"intent"`
	NumSources int       `json:"num_sources"`
	AnsweredAt time.Time `json:"answered_at"`
}

func (e *Emitter) Emit(topic string, payload any) {
	if e == nil || e.pub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event", "topic", topic, "error", err)
		return
	}
	if err := e.pub.Publish(topic, body); err != nil {
		slog.Error("failed to publish event", "topic", topic, "error", err)
	}
}

// CreateTopics pre-creates the topics on nsqd over its HTTP API so the first
// publish does not race topic creation. Runs in the background; failures are
// logged and ignored.
func CreateTopics(nsqdHTTP string) {
	create := func(topic string) {
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
		resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}

	go func() {
		time.Sleep(2 * time.Second)
		create(TopicMoodRecorded)
		create(TopicIndexRebuilt)
		create(TopicChatCompleted)
	}()
}
