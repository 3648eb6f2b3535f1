package session_test

import (
	"errors"
	"testing"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
)

func newSession(t *testing.T, templateID string) (*session.Manager, *session.Session, *registry.Registry) {
	t.Helper()
	reg := registry.Builtin()
	tmpl, err := reg.Template(templateID)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	m := session.NewManager()
	s := m.Create(tmpl.ID, "grok-3-mini", block.FromTemplate(reg, tmpl))
	return m, s, reg
}

func TestSession_UpdateAndToggle(t *testing.T) {
	_, s, _ := newSession(t, "reasoning")

	if _, err := s.UpdateBlock(0, "a careful analyst"); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	b, err := s.ToggleBlock(0)
	if err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if b.Enabled {
		t.Error("block still enabled after toggle")
	}
	if b.Content != "a careful analyst" {
		t.Errorf("content = %q, toggle must keep content", b.Content)
	}

	if _, err := s.UpdateBlock(99, "x"); !errors.Is(err, session.ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSession_PendingBlockRejectsEdits(t *testing.T) {
	_, s, _ := newSession(t, "reasoning")

	ticket, err := s.Begin([]int{1}, false)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := s.UpdateBlock(1, "typed"); !errors.Is(err, session.ErrBlockPending) {
		t.Errorf("UpdateBlock err = %v, want ErrBlockPending", err)
	}
	if _, err := s.UpdateBlock(2, "typed"); err != nil {
		t.Errorf("editing another block: %v", err)
	}
	if _, err := s.Begin([]int{1}, false); !errors.Is(err, session.ErrBlockPending) {
		t.Errorf("second Begin err = %v, want ErrBlockPending", err)
	}

	s.Finish(ticket)
	if got := s.Snapshot().Pending; len(got) != 0 {
		t.Errorf("pending = %v after Finish", got)
	}
	if _, err := s.UpdateBlock(1, "typed"); err != nil {
		t.Errorf("UpdateBlock after Finish: %v", err)
	}
}

func TestSession_BulkAndSingleExclusive(t *testing.T) {
	_, s, _ := newSession(t, "reasoning")

	single, err := s.Begin([]int{0}, false)
	if err != nil {
		t.Fatalf("Begin single: %v", err)
	}
	if _, err := s.Begin([]int{2, 3}, true); !errors.Is(err, session.ErrBulkInFlight) {
		t.Errorf("bulk during single err = %v, want ErrBulkInFlight", err)
	}
	s.Finish(single)

	bulk, err := s.Begin([]int{2, 3}, true)
	if err != nil {
		t.Fatalf("Begin bulk: %v", err)
	}
	if _, err := s.Begin([]int{0}, false); !errors.Is(err, session.ErrBulkInFlight) {
		t.Errorf("single during bulk err = %v, want ErrBulkInFlight", err)
	}
	if !s.Snapshot().BulkInFlight {
		t.Error("snapshot does not report bulk in flight")
	}
	s.Finish(bulk)
	if _, err := s.Begin([]int{0}, false); err != nil {
		t.Errorf("single after bulk: %v", err)
	}
}

func TestSession_ApplyStaleTokenDiscarded(t *testing.T) {
	_, s, reg := newSession(t, "reasoning")

	ticket, err := s.Begin([]int{0}, false)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	s.LoadTemplate(reg, reg.Default())

	if err := s.Apply(ticket, map[int]string{0: "late"}); !errors.Is(err, session.ErrStaleGeneration) {
		t.Fatalf("Apply err = %v, want ErrStaleGeneration", err)
	}
	s.Finish(ticket)

	st := s.Snapshot()
	if st.TemplateID != reg.DefaultID() {
		t.Errorf("template = %q", st.TemplateID)
	}
	if st.Blocks[0].Content == "late" {
		t.Error("late result was applied to the replaced block set")
	}
	if len(st.Pending) != 0 {
		t.Errorf("pending = %v", st.Pending)
	}
}

func TestSession_ApplyOutsideTicket(t *testing.T) {
	_, s, _ := newSession(t, "reasoning")
	before, _ := s.Blocks()

	ticket, _ := s.Begin([]int{0}, false)
	defer s.Finish(ticket)

	err := s.Apply(ticket, map[int]string{0: "ok", 1: "sneaky"})
	if !errors.Is(err, session.ErrNotTargeted) {
		t.Fatalf("err = %v, want ErrNotTargeted", err)
	}
	after, _ := s.Blocks()
	if !block.Equal(before, after) {
		t.Error("partial write on rejected Apply")
	}
}

func TestSession_EventsPublished(t *testing.T) {
	_, s, _ := newSession(t, "reasoning")
	events, cancel := s.Events.Subscribe()
	defer cancel()

	ticket, _ := s.Begin([]int{0}, false)
	_ = s.Apply(ticket, map[int]string{0: "content"})
	s.Finish(ticket)

	want := []string{session.EventPending, session.EventApplied}
	for _, typ := range want {
		ev := <-events
		if ev.Type != typ {
			t.Errorf("event = %q, want %q", ev.Type, typ)
		}
		if len(ev.Indices) != 1 || ev.Indices[0] != 0 {
			t.Errorf("indices = %v", ev.Indices)
		}
	}
}

func TestManager_GetDelete(t *testing.T) {
	m, s, _ := newSession(t, "general")

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	events, _ := s.Events.Subscribe()
	if err := m.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := <-events; ok {
		t.Error("subscriber channel still open after Delete")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
	if err := m.Delete(s.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	_, s, reg := newSession(t, "general")
	_, _ = s.UpdateBlock(1, "Line one\nLine two")
	_, _ = s.ToggleBlock(0)
	original, _ := s.Blocks()

	doc := s.Export()
	if doc.Version != session.DocumentVersion || doc.Template != "general" || doc.Model != "grok-3-mini" {
		t.Fatalf("doc = %+v", doc)
	}

	m := session.NewManager()
	other := m.Create("reasoning", "", nil)
	templateID, blocks, err := session.Import(reg, doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	other.LoadBlocks(templateID, blocks)

	restored, _ := other.Blocks()
	if !block.Equal(original, restored) {
		t.Errorf("round trip changed blocks:\n got %+v\nwant %+v", restored, original)
	}
	if other.TemplateID() != "general" {
		t.Errorf("template = %q", other.TemplateID())
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"blocks":[{"type":"task","label":"Task","content":"x","enabled":true}],"template":"general","model":"m","timestamp":"t","version":"1.0"}`, false},
		{"minor version", `{"blocks":[],"template":"general","version":"1.3"}`, false},
		{"future major", `{"blocks":[],"template":"general","version":"2.0"}`, true},
		{"no blocks", `{"template":"general","version":"1.0"}`, true},
		{"block without type", `{"blocks":[{"label":"Task"}],"version":"1.0"}`, true},
		{"not json", `blocks`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.ParseDocument([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestImport_UnknownBlockType(t *testing.T) {
	reg := registry.Builtin()
	doc := session.Document{
		Blocks:   []block.Instance{{Type: "mystery", Label: "Mystery"}},
		Template: "nope",
		Version:  session.DocumentVersion,
	}
	if _, _, err := session.Import(reg, doc); !errors.Is(err, registry.ErrBlockNotFound) {
		t.Errorf("err = %v, want ErrBlockNotFound", err)
	}
}
