package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/blockprompt/internal/block"
)

// SavedPrompt is a named block set the user kept for later.
type SavedPrompt struct {
	ID         string           `db:"id" json:"id"`
	Name       string           `db:"name" json:"name"`
	TemplateID string           `db:"template_id" json:"templateId"`
	Model      string           `db:"model" json:"model"`
	BlocksJSON string           `db:"blocks" json:"-"`
	Blocks     []block.Instance `db:"-" json:"blocks"`
	Version    string           `db:"version" json:"version"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updatedAt"`
}

// SavedPromptInput carries the writable fields of a saved prompt.
type SavedPromptInput struct {
	Name       string
	TemplateID string
	Model      string
	Blocks     []block.Instance
	Version    string
}

// SavedPromptStore persists saved prompts.
type SavedPromptStore struct {
	db *sqlx.DB
}

func NewSavedPromptStore(db *sqlx.DB) *SavedPromptStore {
	return &SavedPromptStore{db: db}
}

func (s *SavedPromptStore) q(query string) string { return s.db.Rebind(query) }

// Create stores a new saved prompt.
func (s *SavedPromptStore) Create(ctx context.Context, in SavedPromptInput) (*SavedPrompt, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	blocks, err := encodeBlocks(in.Blocks)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO saved_prompts (id, name, template_id, model, blocks, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, name, in.TemplateID, in.Model, blocks, in.Version, now, now)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns the saved prompt with id, or ErrNotFound.
func (s *SavedPromptStore) Get(ctx context.Context, id string) (*SavedPrompt, error) {
	var p SavedPrompt
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM saved_prompts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Blocks, err = decodeBlocks(p.BlocksJSON); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all saved prompts, most recently updated first.
func (s *SavedPromptStore) List(ctx context.Context) ([]*SavedPrompt, error) {
	var prompts []*SavedPrompt
	err := s.db.SelectContext(ctx, &prompts, `SELECT * FROM saved_prompts ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	for _, p := range prompts {
		if p.Blocks, err = decodeBlocks(p.BlocksJSON); err != nil {
			return nil, err
		}
	}
	return prompts, nil
}

// Update replaces every writable field of the saved prompt with id.
func (s *SavedPromptStore) Update(ctx context.Context, id string, in SavedPromptInput) (*SavedPrompt, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	blocks, err := encodeBlocks(in.Blocks)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE saved_prompts
		SET name = ?, template_id = ?, model = ?, blocks = ?, version = ?, updated_at = ?
		WHERE id = ?
	`), name, in.TemplateID, in.Model, blocks, in.Version, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the saved prompt with id.
func (s *SavedPromptStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM saved_prompts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
