package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// UsageDelta carries the increments for one accounting call.
type UsageDelta struct {
	LLMTokens  int
	TTSChars   int
	STTSeconds float64
	DurationMS int64
	CostUSD    float64
	NewSession bool
}

// Record upserts the (user, day) row and applies the deltas in a single
// statement. Concurrent sessions for the same user contend on this row, so
// the increment must happen inside the database, never read-modify-write in
// application code.
func (r *UsageRepository) Record(ctx context.Context, userID, day string, delta UsageDelta) error {
	sessions := 0
	if delta.NewSession {
		sessions = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_usage (id, user_id, day, total_sessions, total_duration_ms, total_tokens, total_cost_usd, llm_tokens, tts_chars, stt_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			total_sessions = total_sessions + excluded.total_sessions,
			total_duration_ms = total_duration_ms + excluded.total_duration_ms,
			total_tokens = total_tokens + excluded.total_tokens,
			total_cost_usd = total_cost_usd + excluded.total_cost_usd,
			llm_tokens = llm_tokens + excluded.llm_tokens,
			tts_chars = tts_chars + excluded.tts_chars,
			stt_seconds = stt_seconds + excluded.stt_seconds
	`, uuid.NewString(), userID, day, sessions, delta.DurationMS, delta.LLMTokens, delta.CostUSD, delta.LLMTokens, delta.TTSChars, delta.STTSeconds)
	return err
}

func (r *UsageRepository) Get(ctx context.Context, userID, day string) (domain.DailyUsage, error) {
	var usage domain.DailyUsage
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, total_sessions, total_duration_ms, total_tokens, total_cost_usd, llm_tokens, tts_chars, stt_seconds
		FROM daily_usage
		WHERE user_id = ? AND day = ?
	`, userID, day).Scan(&usage.ID, &usage.UserID, &usage.Day, &usage.TotalSessions, &usage.TotalDurationMS, &usage.TotalTokens, &usage.TotalCostUSD, &usage.LLMTokens, &usage.TTSChars, &usage.STTSeconds)
	return usage, err
}

// ListSince returns daily rows from sinceDay onward, most recent first.
func (r *UsageRepository) ListSince(ctx context.Context, userID, sinceDay string) ([]domain.DailyUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, day, total_sessions, total_duration_ms, total_tokens, total_cost_usd, llm_tokens, tts_chars, stt_seconds
		FROM daily_usage
		WHERE user_id = ? AND day >= ?
		ORDER BY day DESC
	`, userID, sinceDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsageRows(rows)
}

// Summary aggregates all daily rows for a user.
func (r *UsageRepository) Summary(ctx context.Context, userID string) (domain.UsageSummary, error) {
	var summary domain.UsageSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_sessions), 0),
		       COALESCE(SUM(total_duration_ms), 0),
		       COALESCE(SUM(total_tokens), 0),
		       COALESCE(SUM(total_cost_usd), 0),
		       COUNT(id)
		FROM daily_usage
		WHERE user_id = ?
	`, userID).Scan(&summary.TotalSessions, &summary.TotalDurationMS, &summary.TotalTokens, &summary.TotalCostUSD, &summary.DaysActive)
	return summary, err
}

func (r *UsageRepository) ListRange(ctx context.Context, userID, fromDay, toDay string) ([]domain.DailyUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, day, total_sessions, total_duration_ms, total_tokens, total_cost_usd, llm_tokens, tts_chars, stt_seconds
		FROM daily_usage
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`, userID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsageRows(rows)
}

func scanUsageRows(rows *sql.Rows) ([]domain.DailyUsage, error) {
	var entries []domain.DailyUsage
	for rows.Next() {
		var usage domain.DailyUsage
		if err := rows.Scan(&usage.ID, &usage.UserID, &usage.Day, &usage.TotalSessions, &usage.TotalDurationMS, &usage.TotalTokens, &usage.TotalCostUSD, &usage.LLMTokens, &usage.TTSChars, &usage.STTSeconds); err != nil {
			return nil, err
		}
		entries = append(entries, usage)
	}
	return entries, rows.Err()
}
