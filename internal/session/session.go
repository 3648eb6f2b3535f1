// Package session holds editing sessions: the working block set of one
// prompt, the blocks awaiting generated content, and the token that ties
// in-flight generations to the block set they were issued against.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/metrics"
	"github.com/joestump/blockprompt/internal/registry"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrIndexOutOfRange  = errors.New("block index out of range")
	ErrBlockPending     = errors.New("block is awaiting generated content")
	ErrBulkInFlight     = errors.New("bulk and single-block generation cannot run at the same time")
	ErrStaleGeneration  = errors.New("block set was replaced while generation was in flight")
	ErrNotTargeted      = errors.New("block was not targeted by this generation")
	ErrNoBlocksSelected = errors.New("no blocks selected for generation")
)

// Session is one user's working prompt. All mutation goes through its
// methods; callers never hold references to the block slice.
type Session struct {
	ID     string
	Events *Hub

	mu         sync.Mutex
	templateID string
	model      string
	blocks     []block.Instance
	token      string
	pending    map[int]struct{}
	bulk       bool
	lastSeen   time.Time
	now        func() time.Time
}

// State is a point-in-time copy of a session.
type State struct {
	ID           string           `json:"id"`
	TemplateID   string           `json:"templateId"`
	Model        string           `json:"model"`
	Blocks       []block.Instance `json:"blocks"`
	Pending      []int            `json:"pending"`
	BulkInFlight bool             `json:"bulkInFlight"`
	Token        string           `json:"token"`
	Prompt       string           `json:"prompt"`
	LastSeen     time.Time        `json:"lastSeen"`
}

// Ticket identifies one in-flight generation: the targeted indices and the
// token of the block set they belong to.
type Ticket struct {
	Token   string
	Indices []int
	Bulk    bool
}

// Targets reports whether i is one of the ticket's indices.
func (t *Ticket) Targets(i int) bool { return slices.Contains(t.Indices, i) }

func newSession(templateID, model string, blocks []block.Instance, now func() time.Time) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Events:     NewHub(),
		templateID: templateID,
		model:      model,
		blocks:     block.Clone(blocks),
		token:      uuid.New().String(),
		pending:    map[int]struct{}{},
		lastSeen:   now(),
		now:        now,
	}
}

// Snapshot returns a copy of the session's state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	pending := make([]int, 0, len(s.pending))
	for i := range s.pending {
		pending = append(pending, i)
	}
	slices.Sort(pending)
	return State{
		ID:           s.ID,
		TemplateID:   s.templateID,
		Model:        s.model,
		Blocks:       block.Clone(s.blocks),
		Pending:      pending,
		BulkInFlight: s.bulk,
		Token:        s.token,
		Prompt:       block.Assemble(s.blocks),
		LastSeen:     s.lastSeen,
	}
}

// Blocks returns a copy of the working block set and its token.
func (s *Session) Blocks() ([]block.Instance, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return block.Clone(s.blocks), s.token
}

// Model returns the selected model identifier.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// TemplateID returns the id of the template the block set came from.
func (s *Session) TemplateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateID
}

// Prompt returns the assembled prompt.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return block.Assemble(s.blocks)
}

// SetModel selects the model used for generations that do not name one.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.touchLocked()
}

// UpdateBlock replaces the content of block i. Blocks awaiting generated
// content cannot be edited.
func (s *Session) UpdateBlock(i int, content string) (block.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(i); err != nil {
		return block.Instance{}, err
	}
	if _, ok := s.pending[i]; ok {
		return block.Instance{}, fmt.Errorf("block %d: %w", i, ErrBlockPending)
	}
	s.blocks[i].Content = content
	s.touchLocked()
	return s.blocks[i], nil
}

// ToggleBlock flips whether block i contributes to the prompt. Content is
// kept either way.
func (s *Session) ToggleBlock(i int) (block.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(i); err != nil {
		return block.Instance{}, err
	}
	s.blocks[i].Enabled = !s.blocks[i].Enabled
	s.touchLocked()
	return s.blocks[i], nil
}

// LoadTemplate replaces the block set with a fresh copy of t.
func (s *Session) LoadTemplate(reg *registry.Registry, t registry.TemplateSpec) State {
	return s.LoadBlocks(t.ID, block.FromTemplate(reg, t))
}

// LoadBlocks replaces the block set wholesale, as when loading a saved
// prompt, a history entry or an imported document. The generation token is
// rotated, so results of generations still in flight are discarded.
func (s *Session) LoadBlocks(templateID string, blocks []block.Instance) State {
	s.mu.Lock()
	s.templateID = templateID
	s.blocks = block.Clone(blocks)
	s.token = uuid.New().String()
	s.releaseLocked()
	s.touchLocked()
	st := s.stateLocked()
	s.mu.Unlock()

	s.Events.Publish(Event{Type: EventReplaced, Token: st.Token})
	return st
}

// Begin marks indices as pending and returns a ticket for the generation.
// A bulk generation is refused while any block is pending, and a single
// generation is refused while a bulk one runs.
func (s *Session) Begin(indices []int, bulk bool) (*Ticket, error) {
	if len(indices) == 0 {
		return nil, ErrNoBlocksSelected
	}

	s.mu.Lock()
	for _, i := range indices {
		if err := s.checkIndexLocked(i); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	switch {
	case s.bulk:
		s.mu.Unlock()
		return nil, ErrBulkInFlight
	case bulk && len(s.pending) > 0:
		s.mu.Unlock()
		return nil, ErrBulkInFlight
	}
	for _, i := range indices {
		if _, ok := s.pending[i]; ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("block %d: %w", i, ErrBlockPending)
		}
	}
	for _, i := range indices {
		s.pending[i] = struct{}{}
	}
	s.bulk = bulk
	s.touchLocked()
	t := &Ticket{Token: s.token, Indices: slices.Clone(indices), Bulk: bulk}
	s.mu.Unlock()

	metrics.PendingBlocks.Add(float64(len(indices)))
	s.Events.Publish(Event{Type: EventPending, Indices: t.Indices, Token: t.Token})
	return t, nil
}

// Apply writes generated content to the targeted blocks in one step. It
// fails without writing anything if the block set was replaced since the
// ticket was issued or if any index is outside the ticket.
func (s *Session) Apply(t *Ticket, updates map[int]string) error {
	s.mu.Lock()
	if t.Token != s.token {
		s.mu.Unlock()
		return ErrStaleGeneration
	}
	applied := make([]int, 0, len(updates))
	for i := range updates {
		if !t.Targets(i) {
			s.mu.Unlock()
			return fmt.Errorf("block %d: %w", i, ErrNotTargeted)
		}
		applied = append(applied, i)
	}
	for i, content := range updates {
		s.blocks[i].Content = content
	}
	s.touchLocked()
	s.mu.Unlock()

	slices.Sort(applied)
	s.Events.Publish(Event{Type: EventApplied, Indices: applied, Token: t.Token})
	return nil
}

// Finish clears the ticket's pending marks. It is safe to call more than
// once and after the block set was replaced.
func (s *Session) Finish(t *Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Token != s.token {
		return
	}
	cleared := 0
	for _, i := range t.Indices {
		if _, ok := s.pending[i]; ok {
			delete(s.pending, i)
			cleared++
		}
	}
	if t.Bulk {
		s.bulk = false
	}
	metrics.PendingBlocks.Sub(float64(cleared))
}

// Notify publishes a user-facing message about the session.
func (s *Session) Notify(ev Event) {
	s.Events.Publish(ev)
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.mu.Lock()
	s.token = uuid.New().String()
	s.releaseLocked()
	s.mu.Unlock()
	s.Events.Close()
}

func (s *Session) releaseLocked() {
	metrics.PendingBlocks.Sub(float64(len(s.pending)))
	s.pending = map[int]struct{}{}
	s.bulk = false
}

func (s *Session) touchLocked() { s.lastSeen = s.now() }

func (s *Session) checkIndexLocked(i int) error {
	if i < 0 || i >= len(s.blocks) {
		return fmt.Errorf("block %d of %d: %w", i, len(s.blocks), ErrIndexOutOfRange)
	}
	return nil
}
