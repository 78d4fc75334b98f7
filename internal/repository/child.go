package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

type ChildRepository struct {
	db *sql.DB
}

func NewChildRepository(db *sql.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

func (r *ChildRepository) Create(ctx context.Context, child domain.Child) (domain.Child, error) {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	child.CreatedAt = time.Now().UTC()

	languages, err := json.Marshal(child.LearningLanguages)
	if err != nil {
		return domain.Child{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO children (id, user_id, name, age, primary_language, learning_languages, character_id, login_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, child.ID, child.UserID, child.Name, child.Age, child.PrimaryLanguage, string(languages), child.CharacterID, nullable(child.LoginCode), child.CreatedAt)
	return child, err
}

func (r *ChildRepository) Get(ctx context.Context, id string) (domain.Child, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, age, primary_language, learning_languages, character_id, login_code, created_at
		FROM children
		WHERE id = ?
	`, id))
}

// GetOwned returns the child only when it belongs to the given user.
func (r *ChildRepository) GetOwned(ctx context.Context, id, userID string) (domain.Child, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, age, primary_language, learning_languages, character_id, login_code, created_at
		FROM children
		WHERE id = ? AND user_id = ?
	`, id, userID))
}

func (r *ChildRepository) GetByLoginCode(ctx context.Context, code string) (domain.Child, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, age, primary_language, learning_languages, character_id, login_code, created_at
		FROM children
		WHERE login_code = ?
	`, code))
}

func (r *ChildRepository) ListByUser(ctx context.Context, userID string) ([]domain.Child, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, age, primary_language, learning_languages, character_id, login_code, created_at
		FROM children
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []domain.Child
	for rows.Next() {
		child, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

// Update rewrites the mutable profile fields of an owned child.
func (r *ChildRepository) Update(ctx context.Context, child domain.Child) (domain.Child, error) {
	languages, err := json.Marshal(child.LearningLanguages)
	if err != nil {
		return domain.Child{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE children
		SET name = ?, age = ?, primary_language = ?, learning_languages = ?, character_id = ?
		WHERE id = ? AND user_id = ?
	`, child.Name, child.Age, child.PrimaryLanguage, string(languages), child.CharacterID, child.ID, child.UserID)
	if err != nil {
		return domain.Child{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Child{}, sql.ErrNoRows
	}
	return child, nil
}

func (r *ChildRepository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM children
		WHERE id = ? AND user_id = ?
	`, id, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ChildRepository) scanOne(row rowScanner) (domain.Child, error) {
	var (
		child     domain.Child
		languages string
		loginCode sql.NullString
	)
	err := row.Scan(&child.ID, &child.UserID, &child.Name, &child.Age, &child.PrimaryLanguage, &languages, &child.CharacterID, &loginCode, &child.CreatedAt)
	if err != nil {
		return domain.Child{}, err
	}
	if err := json.Unmarshal([]byte(languages), &child.LearningLanguages); err != nil {
		return domain.Child{}, err
	}
	child.LoginCode = loginCode.String
	return child, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
