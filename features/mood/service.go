package mood

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"mindwell/backend/internal/event"
)

var ErrInvalidEntry = errors.New("invalid mood entry")

const (
	// recentWindow is how many trailing entries count as "recent" when
	// deciding the trend direction.
	recentWindow = 7

	// trendMargin is the minimum average shift that counts as a change.
	trendMargin = 5.0

	// neutralMood is reported when a user has no history yet.
	neutralMood = 50.0
)

type Service struct {
	repo    Repository
	emitter *event.Emitter
}

func NewService(repo Repository, emitter *event.Emitter) *Service {
	return &Service{repo: repo, emitter: emitter}
}

// Record validates and stores a mood entry, then emits a mood.recorded event.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry.MoodScore < 0 || entry.MoodScore > 100 {
		return fmt.Errorf("%w: mood_score must be between 0 and 100", ErrInvalidEntry)
	}
	if entry.SessionType == "" {
		return fmt.Errorf("%w: session_type is required", ErrInvalidEntry)
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return err
	}

	s.emitter.Emit(event.TopicMoodRecorded, event.MoodRecorded{
		UserID:      entry.UserID,
		MoodScore:   entry.MoodScore,
		SessionType: entry.SessionType,
		RecordedAt:  entry.CreatedAt,
	})
	return nil
}

// Analytics computes a user's average mood and trend over the last days days.
// The trend compares the most recent entries against the older remainder.
func (s *Service) Analytics(ctx context.Context, userID, days int) (Analytics, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	entries, err := s.repo.ListSince(ctx, userID, since)
	if err != nil {
		return Analytics{}, err
	}

	if len(entries) == 0 {
		return Analytics{
			UserID:      userID,
			AverageMood: neutralMood,
			MoodTrend:   TrendNoData,
			MoodData:    []Entry{},
		}, nil
	}

	var total float64
	for _, e := range entries {
		total += float64(e.MoodScore)
	}
	average := total / float64(len(entries))

	return Analytics{
		UserID:        userID,
		AverageMood:   math.Round(average*100) / 100,
		MoodTrend:     trend(entries, average),
		TotalSessions: len(entries),
		MoodData:      entries,
	}, nil
}

func trend(entries []Entry, average float64) string {
	if len(entries) < 2 {
		return TrendInsufficient
	}

	recent := entries
	if len(entries) > recentWindow {
		recent = entries[len(entries)-recentWindow:]
	}
	var recentTotal float64
	for _, e := range recent {
		recentTotal += float64(e.MoodScore)
	}
	recentAvg := recentTotal / float64(len(recent))

	olderAvg := average
	if len(entries) > recentWindow {
		older := entries[:len(entries)-recentWindow]
		var olderTotal float64
		for _, e := range older {
			olderTotal += float64(e.MoodScore)
		}
		olderAvg = olderTotal / float64(len(older))
	}

	switch {
	case recentAvg > olderAvg+trendMargin:
		return TrendImproving
	case recentAvg < olderAvg-trendMargin:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Summary aggregates the last 30 days across all users.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx, time.Now().AddDate(0, 0, -30))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
