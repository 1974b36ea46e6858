// Package intent routes user messages to a conversation topic using
// rule-based scoring over keywords, phrase patterns, and recent history.
package intent

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	keywordWeight = 0.3
	patternWeight = 0.5
	historyWeight = 0.1

	// Scores below this fall back to navigation.
	minConfidence = 0.3

	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Result is the outcome of classifying one message.
type Result struct {
	Intent     string             `json:"intent"`
	Confidence float64            `json:"confidence"`
	Service    string             `json:"suggested_service"`
	Priority   string             `json:"priority"`
	Reasoning  string             `json:"reasoning"`
	AllScores  map[string]float64 `json:"all_scores"`
}

type rule struct {
	keywords []string
	patterns []*regexp.Regexp
	service  string
	priority string
}

var rules = map[string]rule{
	"stress": {
		keywords: []string{"stress", "overwhelmed", "pressure", "tension", "burden", "exhausted"},
		patterns: compile(`feel.*stress`, `so much pressure`, `can't handle`, `overwhelmed`),
		service:  "stress-management",
		priority: PriorityNormal,
	},
	"anxiety": {
		keywords: []string{"anxious", "worry", "nervous", "panic", "fear", "scared"},
		patterns: compile(`feel.*anxious`, `worry.*about`, `panic attack`, `so scared`),
		service:  "anxiety-support",
		priority: PriorityNormal,
	},
	"depression": {
		keywords: []string{"sad", "depressed", "hopeless", "empty", "worthless", "lonely"},
		patterns: compile(`feel.*sad`, `so depressed`, `no point`, `feel empty`),
		service:  "depression-support",
		priority: PriorityNormal,
	},
	"crisis": {
		keywords: []string{"suicide", "kill myself", "end it all", "hurt myself", "no hope"},
		patterns: compile(`want.*die`, `end.*life`, `hurt.*myself`, `no.*hope`),
		service:  "crisis-intervention",
		priority: PriorityUrgent,
	},
	"navigation": {
		keywords: []string{"help", "start", "begin", "how", "what", "schedule", "appointment"},
		patterns: compile(`how.*work`, `get started`, `need help`, `what.*do`),
		service:  "navigation-assistant",
		priority: PriorityNormal,
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores the message against every intent and returns the best
// match. Only the last three history entries contribute context. Messages
// with no clear signal route to navigation with moderate confidence.
func (c *Classifier) Classify(message string, history []string) Result {
	lower := strings.ToLower(message)

	scores := make(map[string]float64, len(rules))
	reasons := make(map[string]string, len(rules))

	if len(history) > 3 {
		history = history[len(history)-3:]
	}

	for intent, r := range rules {
		var score float64
		var parts []string

		keywordMatches := 0
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				keywordMatches++
			}
		}
		if keywordMatches > 0 {
			score += float64(keywordMatches) * keywordWeight
			parts = append(parts, fmt.Sprintf("Found %d relevant keywords", keywordMatches))
		}

		patternMatches := 0
		for _, p := range r.patterns {
			if p.MatchString(lower) {
				patternMatches++
			}
		}
		if patternMatches > 0 {
			score += float64(patternMatches) * patternWeight
			parts = append(parts, fmt.Sprintf("Matched %d patterns", patternMatches))
		}

		var contextScore float64
		for _, prev := range history {
			prevLower := strings.ToLower(prev)
			for _, kw := range r.keywords {
				if strings.Contains(prevLower, kw) {
					contextScore += historyWeight
				}
			}
		}
		if contextScore > 0 {
			score += contextScore
			parts = append(parts, fmt.Sprintf("Context support: %.1f", contextScore))
		}

		scores[intent] = score
		if len(parts) > 0 {
			reasons[intent] = strings.Join(parts, "; ")
		} else {
			reasons[intent] = "No specific indicators"
		}
	}

	best := "navigation"
	bestScore := -1.0
	// Deterministic tie-breaking by name.
	for _, intent := range []string{"anxiety", "crisis", "depression", "navigation", "stress"} {
		if scores[intent] > bestScore {
			best = intent
			bestScore = scores[intent]
		}
	}

	if bestScore < minConfidence {
		best = "navigation"
		bestScore = 0.5
		reasons[best] = "Default routing - no specific intent detected"
	}

	if bestScore > 1.0 {
		bestScore = 1.0
	}

	r := rules[best]
	return Result{
		Intent:     best,
		Confidence: bestScore,
		Service:    r.service,
		Priority:   r.priority,
		Reasoning:  reasons[best],
		AllScores:  scores,
	}
}

// Intents lists every known intent with its routing target, for the
// discovery endpoint.
func (c *Classifier) Intents() map[string]IntentInfo {
	out := make(map[string]IntentInfo, len(rules))
	for intent, r := range rules {
		keywords := r.keywords
		if len(keywords) > 5 {
			keywords = keywords[:5]
		}
		out[intent] = IntentInfo{
			Service:  r.service,
			Keywords: keywords,
			Priority: r.priority,
		}
	}
	return out
}

type IntentInfo struct {
	Service  string   `json:"service"`
	Keywords []string `json:"keywords"`
	Priority string   `json:"priority"`
}
