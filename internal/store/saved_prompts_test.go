package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/store"
	"github.com/joestump/blockprompt/internal/testutil"
)

func sampleBlocks() []block.Instance {
	return []block.Instance{
		{Type: "task", Label: "Task", Content: "Summarize the report", Enabled: true},
		{Type: "examples", Label: "Examples", Content: "a\nb", Enabled: false},
	}
}

func TestSavedPromptStore_CRUD(t *testing.T) {
	s := store.NewSavedPromptStore(testutil.NewTestDB(t))
	ctx := context.Background()

	p, err := s.Create(ctx, store.SavedPromptInput{
		Name:       "  Weekly report  ",
		TemplateID: "summarization",
		Model:      "grok-3-mini",
		Blocks:     sampleBlocks(),
		Version:    "1.0",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Weekly report" {
		t.Errorf("name = %q, want trimmed", p.Name)
	}
	if !block.Equal(p.Blocks, sampleBlocks()) {
		t.Errorf("blocks = %+v", p.Blocks)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TemplateID != "summarization" || got.Version != "1.0" {
		t.Errorf("got = %+v", got)
	}

	updated, err := s.Update(ctx, p.ID, store.SavedPromptInput{
		Name:       "Monthly report",
		TemplateID: "general",
		Model:      "grok-3-beta",
		Blocks:     sampleBlocks()[:1],
		Version:    "1.0",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Monthly report" || len(updated.Blocks) != 1 || updated.Model != "grok-3-beta" {
		t.Errorf("updated = %+v", updated)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Errorf("list = %+v", list)
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
}

func TestSavedPromptStore_NotFoundAndInvalid(t *testing.T) {
	s := store.NewSavedPromptStore(testutil.NewTestDB(t))
	ctx := context.Background()

	if _, err := s.Create(ctx, store.SavedPromptInput{Name: "   "}); !errors.Is(err, store.ErrInvalid) {
		t.Errorf("Create blank name err = %v, want ErrInvalid", err)
	}
	if _, err := s.Update(ctx, "missing", store.SavedPromptInput{Name: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestSavedPromptStore_NilBlocks(t *testing.T) {
	s := store.NewSavedPromptStore(testutil.NewTestDB(t))
	p, err := s.Create(context.Background(), store.SavedPromptInput{Name: "empty"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Blocks == nil || len(p.Blocks) != 0 {
		t.Errorf("blocks = %#v, want empty slice", p.Blocks)
	}
}
