package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, childID, language string) (domain.Conversation, error) {
	conv := domain.Conversation{
		ID:        uuid.NewString(),
		ChildID:   childID,
		StartedAt: time.Now().UTC(),
		Language:  language,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, child_id, started_at, language, total_tokens, estimated_cost_usd)
		VALUES (?, ?, ?, ?, 0, 0)
	`, conv.ID, conv.ChildID, conv.StartedAt, conv.Language)
	return conv, err
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (domain.Conversation, error) {
	var (
		conv    domain.Conversation
		endedAt sql.NullTime
		lang    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, child_id, started_at, ended_at, language, total_tokens, estimated_cost_usd
		FROM conversations
		WHERE id = ?
	`, id).Scan(&conv.ID, &conv.ChildID, &conv.StartedAt, &endedAt, &lang, &conv.TotalTokens, &conv.EstimatedCostUSD)
	if err != nil {
		return domain.Conversation{}, err
	}
	if endedAt.Valid {
		conv.EndedAt = &endedAt.Time
	}
	conv.Language = lang.String
	return conv, nil
}

func (r *ConversationRepository) ListByChild(ctx context.Context, childID string, limit int) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, child_id, started_at, ended_at, language, total_tokens, estimated_cost_usd
		FROM conversations
		WHERE child_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, childID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var (
			conv    domain.Conversation
			endedAt sql.NullTime
			lang    sql.NullString
		)
		if err := rows.Scan(&conv.ID, &conv.ChildID, &conv.StartedAt, &endedAt, &lang, &conv.TotalTokens, &conv.EstimatedCostUSD); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			conv.EndedAt = &endedAt.Time
		}
		conv.Language = lang.String
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// ListByUser returns recent conversations across all of a parent's children.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.child_id, c.started_at, c.ended_at, c.language, c.total_tokens, c.estimated_cost_usd
		FROM conversations c
		JOIN children ch ON ch.id = c.child_id
		WHERE ch.user_id = ?
		ORDER BY c.started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var (
			conv    domain.Conversation
			endedAt sql.NullTime
			lang    sql.NullString
		)
		if err := rows.Scan(&conv.ID, &conv.ChildID, &conv.StartedAt, &endedAt, &lang, &conv.TotalTokens, &conv.EstimatedCostUSD); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			conv.EndedAt = &endedAt.Time
		}
		conv.Language = lang.String
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// AppendTurn writes both messages of one conversation turn and bumps the
// conversation totals inside a single transaction. Either the whole turn is
// recorded or none of it is.
func (r *ConversationRepository) AppendTurn(ctx context.Context, conversationID string, child, character domain.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMessage(ctx, tx, conversationID, child); err != nil {
		return fmt.Errorf("append child message: %w", err)
	}
	if err := insertMessage(ctx, tx, conversationID, character); err != nil {
		return fmt.Errorf("append character message: %w", err)
	}

	// The character message carries the whole turn's cost.
	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET total_tokens = total_tokens + ?,
		    estimated_cost_usd = estimated_cost_usd + ?
		WHERE id = ?
	`, character.TokensUsed, character.CostUSD, conversationID)
	if err != nil {
		return fmt.Errorf("update conversation totals: %w", err)
	}

	return tx.Commit()
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, language, emotion, audio_duration_ms, tokens_used, cost_usd, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg      domain.Message
			lang     sql.NullString
			emotion  sql.NullString
			duration sql.NullInt64
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &lang, &emotion, &duration, &msg.TokensUsed, &msg.CostUSD, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Language = lang.String
		msg.Emotion = emotion.String
		if duration.Valid {
			ms := int(duration.Int64)
			msg.AudioDurationMS = &ms
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// SetEnded fixes the conversation end time. It only writes when no end time
// is recorded yet, which makes ending idempotent.
func (r *ConversationRepository) SetEnded(ctx context.Context, id string, endedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversations
		SET ended_at = ?
		WHERE id = ? AND ended_at IS NULL
	`, endedAt, id)
	return err
}

func insertMessage(ctx context.Context, tx *sql.Tx, conversationID string, msg domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	var duration any
	if msg.AudioDurationMS != nil {
		duration = *msg.AudioDurationMS
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, language, emotion, audio_duration_ms, tokens_used, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, conversationID, msg.Role, msg.Content, msg.Language, msg.Emotion, duration, msg.TokensUsed, msg.CostUSD, msg.CreatedAt)
	return err
}
