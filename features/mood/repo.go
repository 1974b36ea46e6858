package mood

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	ListSince(ctx context.Context, userID int, since time.Time) ([]Entry, error)
	Summary(ctx context.Context, since time.Time) (Summary, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO mood_history (user_id, mood_score, session_type, feedback_text) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, entry.UserID, entry.MoodScore, entry.SessionType, nullableText(entry.FeedbackText)).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PostgresRepo) ListSince(ctx context.Context, userID int, since time.Time) ([]Entry, error) {
	query := `SELECT id, user_id, mood_score, session_type, feedback_text, created_at FROM mood_history WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var feedback sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.MoodScore, &e.SessionType, &feedback, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.FeedbackText = feedback.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Summary(ctx context.Context, since time.Time) (Summary, error) {
	var s Summary
	var avg sql.NullFloat64
	var minScore, maxScore sql.NullInt64
	query := `SELECT COUNT(*), AVG(mood_score), MIN(mood_score), MAX(mood_score), COUNT(DISTINCT user_id) FROM mood_history WHERE created_at >= $1`
	err := r.db.QueryRowContext(ctx, query, since).Scan(&s.TotalEntries, &avg, &minScore, &maxScore, &s.ActiveUsers)
	if err != nil {
		return Summary{}, err
	}
	s.AverageMood = avg.Float64
	s.MinMood = int(minScore.Int64)
	s.MaxMood = int(maxScore.Int64)
	return s, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM mood_history`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
