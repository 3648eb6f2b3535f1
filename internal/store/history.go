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

// HistoryEntry is an assembled prompt as it was when the user copied it.
type HistoryEntry struct {
	ID         string           `db:"id" json:"id"`
	SessionID  string           `db:"session_id" json:"sessionId"`
	TemplateID string           `db:"template_id" json:"templateId"`
	Model      string           `db:"model" json:"model"`
	Prompt     string           `db:"prompt" json:"prompt"`
	BlocksJSON string           `db:"blocks" json:"-"`
	Blocks     []block.Instance `db:"-" json:"blocks"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
}

// HistoryStore persists prompt history.
type HistoryStore struct {
	db *sqlx.DB
}

func NewHistoryStore(db *sqlx.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) q(query string) string { return s.db.Rebind(query) }

// Record appends an entry to the history.
func (s *HistoryStore) Record(ctx context.Context, sessionID, templateID, model, prompt string, blocks []block.Instance) (*HistoryEntry, error) {
	raw, err := encodeBlocks(blocks)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO prompt_history (id, session_id, template_id, model, prompt, blocks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, sessionID, templateID, model, prompt, raw, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns the entry with id, or ErrNotFound.
func (s *HistoryStore) Get(ctx context.Context, id string) (*HistoryEntry, error) {
	var e HistoryEntry
	err := s.db.GetContext(ctx, &e, s.q(`SELECT * FROM prompt_history WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.Blocks, err = decodeBlocks(e.BlocksJSON); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns up to limit entries, newest first. limit <= 0 means 50.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*HistoryEntry
	err := s.db.SelectContext(ctx, &entries, s.q(`
		SELECT * FROM prompt_history ORDER BY created_at DESC, id ASC LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Blocks, err = decodeBlocks(e.BlocksJSON); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries and returns how many were
// removed. Entries rank as in List, so ties on created_at break by id.
func (s *HistoryStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.q(`
		SELECT id FROM prompt_history ORDER BY created_at DESC, id ASC
	`))
	if err != nil {
		return 0, err
	}
	if len(ids) <= keep {
		return 0, nil
	}

	var removed int64
	stale := ids[keep:]
	for len(stale) > 0 {
		n := min(len(stale), pruneBatch)
		query, args, err := sqlx.In(`DELETE FROM prompt_history WHERE id IN (?)`, stale[:n])
		if err != nil {
			return removed, err
		}
		res, err := s.db.ExecContext(ctx, s.q(query), args...)
		if err != nil {
			return removed, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return removed, err
		}
		removed += affected
		stale = stale[n:]
	}
	return removed, nil
}

const pruneBatch = 500
