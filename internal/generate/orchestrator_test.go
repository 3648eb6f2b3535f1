package generate_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
	"github.com/joestump/blockprompt/internal/session"
)

const validBlock = `{"content":"Generated task","metadata":{"blockType":"task","isEnhancement":false,"timestamp":"2025-01-01T00:00:00Z","quality":0.9,"suggestions":["add a deadline"]}}`

// staticProvider answers every call with body and counts calls.
func staticProvider(body string, calls *atomic.Int32) llm.Provider {
	return llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		if calls != nil {
			calls.Add(1)
		}
		return []byte(body), nil
	})
}

// testRegistry has a template whose constraints block is pre-filled, so
// only task and format are targeted by a bulk generation.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.BuiltinSpecs(), []registry.TemplateSpec{
		{
			ID:   "plan",
			Name: "Plan",
			Blocks: []registry.BlockRef{
				{Type: "task", Label: "Task", Enabled: true},
				{Type: "constraints", Label: "Constraints", Content: "keep", Enabled: true},
				{Type: "format", Label: "Format", Enabled: true},
				{Type: "examples", Label: "Examples", Enabled: false},
			},
		},
		{
			ID:     "general",
			Name:   "General",
			Blocks: []registry.BlockRef{{Type: "task", Label: "Task", Enabled: true}},
		},
	}, "general")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func newPlanSession(t *testing.T, reg *registry.Registry) *session.Session {
	t.Helper()
	tmpl, _ := reg.Template("plan")
	return session.NewManager().Create(tmpl.ID, "grok-3-mini", block.FromTemplate(reg, tmpl))
}

func drain(events <-chan session.Event) []session.Event {
	var out []session.Event
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countType(events []session.Event, typ string) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestGenerateEmpty_MapsOnlyTargetedBlocks(t *testing.T) {
	reg := testRegistry(t)
	var seen llm.Call
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		seen = call
		return []byte(`{"generatedBlocks":{"task":"X","constraints":"Y","format":"Z","examples":"E"}}`), nil
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{})
	sess := newPlanSession(t, reg)

	res, err := o.GenerateEmpty(context.Background(), sess, schema.GoalRequest{UserPrompt: "ship the release"})
	if err != nil {
		t.Fatalf("GenerateEmpty: %v", err)
	}
	if res.Outcome != generate.OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	st := sess.Snapshot()
	want := []string{"X", "keep", "Z", ""}
	for i, w := range want {
		if st.Blocks[i].Content != w {
			t.Errorf("block %d (%s) = %q, want %q", i, st.Blocks[i].Type, st.Blocks[i].Content, w)
		}
	}
	if len(st.Pending) != 0 || st.BulkInFlight {
		t.Errorf("pending = %v bulk = %v after completion", st.Pending, st.BulkInFlight)
	}
	if len(res.Ignored) != 2 {
		t.Errorf("ignored = %v, want constraints and examples", res.Ignored)
	}
	if seen.Model != "grok-3-mini" || seen.Schema != schema.AllBlocksJSONSchema {
		t.Errorf("call = model %q schema %.20q", seen.Model, seen.Schema)
	}
}

func TestGenerateEmpty_NoTargets(t *testing.T) {
	reg := testRegistry(t)
	var calls atomic.Int32
	o := generate.NewOrchestrator(reg, staticProvider(`{}`, &calls), generate.Options{})
	sess := newPlanSession(t, reg)
	_, _ = sess.UpdateBlock(0, "a")
	_, _ = sess.UpdateBlock(2, "b")

	events, cancel := sess.Events.Subscribe()
	defer cancel()

	_, err := o.GenerateEmpty(context.Background(), sess, schema.GoalRequest{UserPrompt: "goal"})
	if !errors.Is(err, generate.ErrNoTargets) {
		t.Fatalf("err = %v, want ErrNoTargets", err)
	}
	if calls.Load() != 0 {
		t.Error("provider called with nothing to generate")
	}
	if got := drain(events); countType(got, session.EventNotice) != 1 {
		t.Errorf("events = %+v, want one notice", got)
	}
}

func TestGenerateEmpty_FailureNotifiesOnce(t *testing.T) {
	reg := testRegistry(t)
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		return nil, &llm.ProviderError{Provider: "xai", StatusCode: 500, Err: errors.New("boom")}
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{})
	sess := newPlanSession(t, reg)
	events, cancel := sess.Events.Subscribe()
	defer cancel()

	res, err := o.GenerateEmpty(context.Background(), sess, schema.GoalRequest{UserPrompt: "goal"})
	if err != nil {
		t.Fatalf("GenerateEmpty: %v", err)
	}
	if res.Outcome != generate.OutcomeProviderError || !res.Failed() {
		t.Errorf("result = %+v", res)
	}
	if res.Message != "Failed to generate content for Task, Format." {
		t.Errorf("message = %q", res.Message)
	}

	got := drain(events)
	if n := countType(got, session.EventFailed); n != 1 {
		t.Errorf("failed events = %d, want 1", n)
	}
	st := sess.Snapshot()
	if len(st.Pending) != 0 || st.BulkInFlight {
		t.Errorf("pending not cleared: %+v", st)
	}
}

func TestGenerateBlock_SchemaFailureClearsPending(t *testing.T) {
	reg := testRegistry(t)
	o := generate.NewOrchestrator(reg, staticProvider(`{"content":"half","metadata":{"quality":7}}`, nil), generate.Options{})
	sess := newPlanSession(t, reg)
	before, _ := sess.Blocks()

	res, err := o.GenerateBlock(context.Background(), sess, 1, schema.GoalRequest{UserPrompt: "tighten"})
	if err != nil {
		t.Fatalf("GenerateBlock: %v", err)
	}
	if res.Outcome != generate.OutcomeSchemaInvalid {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if string(res.Err.Raw) == "" {
		t.Error("raw body not kept for diagnosis")
	}

	after, _ := sess.Blocks()
	if !block.Equal(before, after) {
		t.Error("blocks changed after schema failure")
	}
	if p := sess.Snapshot().Pending; len(p) != 0 {
		t.Errorf("pending = %v", p)
	}
}

func TestGenerateBlock_Success(t *testing.T) {
	reg := testRegistry(t)
	var seen llm.Call
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		seen = call
		return []byte(validBlock), nil
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{DefaultModel: "fallback-model"})
	sess := newPlanSession(t, reg)
	sess.SetModel("grok-3-beta")

	res, err := o.GenerateBlock(context.Background(), sess, 1, schema.GoalRequest{UserPrompt: "tighten"})
	if err != nil {
		t.Fatalf("GenerateBlock: %v", err)
	}
	if res.Outcome != generate.OutcomeSuccess || len(res.Applied) != 1 || res.Applied[0] != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !res.Metadata.IsEnhancement {
		t.Error("existing content should make this an enhancement")
	}
	if seen.Model != "grok-3-beta" {
		t.Errorf("model = %q, want session model", seen.Model)
	}
	if got := sess.Snapshot().Blocks[1].Content; got != "Generated task" {
		t.Errorf("content = %q", got)
	}
}

func TestGenerateBlock_EmptyGoalNeverCallsProvider(t *testing.T) {
	reg := testRegistry(t)
	var calls atomic.Int32
	o := generate.NewOrchestrator(reg, staticProvider(validBlock, &calls), generate.Options{})
	sess := newPlanSession(t, reg)
	ctx := context.Background()

	for _, goal := range []string{"", "   ", "\n\t"} {
		if _, err := o.GenerateBlock(ctx, sess, 0, schema.GoalRequest{UserPrompt: goal}); !errors.Is(err, generate.ErrEmptyGoal) {
			t.Errorf("GenerateBlock(%q) err = %v", goal, err)
		}
		if _, err := o.GenerateEmpty(ctx, sess, schema.GoalRequest{UserPrompt: goal}); !errors.Is(err, generate.ErrEmptyGoal) {
			t.Errorf("GenerateEmpty(%q) err = %v", goal, err)
		}
		if _, err := o.BlockContent(ctx, schema.GenerationRequest{BlockType: "task", BlockLabel: "Task", UserPrompt: goal}); !errors.Is(err, generate.ErrEmptyGoal) {
			t.Errorf("BlockContent(%q) err = %v", goal, err)
		}
		if _, err := o.AllBlocks(ctx, schema.AllBlocksRequest{TemplateID: "plan", UserPrompt: goal}); !errors.Is(err, generate.ErrEmptyGoal) {
			t.Errorf("AllBlocks(%q) err = %v", goal, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("provider called %d times", calls.Load())
	}
	if p := sess.Snapshot().Pending; len(p) != 0 {
		t.Errorf("pending = %v", p)
	}
}

func TestGenerateBlock_ReplacedDuringCallIsDiscarded(t *testing.T) {
	reg := testRegistry(t)
	var sess *session.Session
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		sess.LoadTemplate(reg, reg.Default())
		return []byte(validBlock), nil
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{})
	sess = newPlanSession(t, reg)

	res, err := o.GenerateBlock(context.Background(), sess, 0, schema.GoalRequest{UserPrompt: "goal"})
	if err != nil {
		t.Fatalf("GenerateBlock: %v", err)
	}
	if res.Outcome != generate.OutcomeDiscarded {
		t.Errorf("outcome = %s, want discarded", res.Outcome)
	}
	st := sess.Snapshot()
	if st.TemplateID != "general" || st.Blocks[0].Content != "" {
		t.Errorf("replacement block set was modified: %+v", st.Blocks)
	}
}

func TestGenerateBlock_PendingRejectsSecondRequest(t *testing.T) {
	reg := testRegistry(t)
	o := generate.NewOrchestrator(reg, staticProvider(validBlock, nil), generate.Options{})
	sess := newPlanSession(t, reg)

	ticket, err := sess.Begin([]int{0}, false)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer sess.Finish(ticket)

	events, cancel := sess.Events.Subscribe()
	defer cancel()

	if _, err := o.GenerateBlock(context.Background(), sess, 0, schema.GoalRequest{UserPrompt: "goal"}); !errors.Is(err, session.ErrBlockPending) {
		t.Errorf("err = %v, want ErrBlockPending", err)
	}
	if _, err := o.GenerateEmpty(context.Background(), sess, schema.GoalRequest{UserPrompt: "goal"}); !errors.Is(err, session.ErrBulkInFlight) {
		t.Errorf("bulk err = %v, want ErrBulkInFlight", err)
	}
	got := drain(events)
	if countType(got, session.EventNotice) != 2 || countType(got, session.EventPending) != 0 {
		t.Errorf("events = %+v, want one notice per refused request", got)
	}
}

func TestGenerateEmpty_RefusedWhileBulkRuns(t *testing.T) {
	reg := testRegistry(t)
	var calls atomic.Int32
	o := generate.NewOrchestrator(reg, staticProvider(validBlock, &calls), generate.Options{})
	sess := newPlanSession(t, reg)

	ticket, err := sess.Begin([]int{2}, true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer sess.Finish(ticket)

	events, cancel := sess.Events.Subscribe()
	defer cancel()

	if _, err := o.GenerateBlock(context.Background(), sess, 0, schema.GoalRequest{UserPrompt: "goal"}); !errors.Is(err, session.ErrBulkInFlight) {
		t.Errorf("err = %v, want ErrBulkInFlight", err)
	}
	if calls.Load() != 0 {
		t.Error("provider called while a bulk run was in flight")
	}
	if got := drain(events); countType(got, session.EventNotice) != 1 {
		t.Errorf("events = %+v, want one notice", got)
	}
}

func TestOrchestrator_NoProvider(t *testing.T) {
	reg := testRegistry(t)
	o := generate.NewOrchestrator(reg, nil, generate.Options{})
	sess := newPlanSession(t, reg)

	if o.Enabled() {
		t.Error("Enabled with nil provider")
	}
	if _, err := o.GenerateBlock(context.Background(), sess, 0, schema.GoalRequest{UserPrompt: "goal"}); !errors.Is(err, generate.ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
	_, err := o.BlockContent(context.Background(), schema.GenerationRequest{BlockType: "task", BlockLabel: "Task", UserPrompt: "goal"})
	if !errors.Is(err, generate.ErrNoProvider) {
		t.Errorf("BlockContent err = %v, want ErrNoProvider", err)
	}
}

func TestBlockContent_FillsMetadata(t *testing.T) {
	reg := testRegistry(t)
	o := generate.NewOrchestrator(reg, staticProvider(`{"content":"c","metadata":{"quality":0.5,"suggestions":[]}}`, nil), generate.Options{})

	got, err := o.BlockContent(context.Background(), schema.GenerationRequest{
		BlockType: "format", BlockLabel: "Format", UserPrompt: "goal", ExistingContent: "old",
	})
	if err != nil {
		t.Fatalf("BlockContent: %v", err)
	}
	if got.Metadata.BlockType != "format" || !got.Metadata.IsEnhancement || got.Metadata.Timestamp == "" {
		t.Errorf("metadata = %+v", got.Metadata)
	}

	_, err = o.BlockContent(context.Background(), schema.GenerationRequest{BlockType: "nope", BlockLabel: "N", UserPrompt: "goal"})
	if !errors.Is(err, registry.ErrBlockNotFound) {
		t.Errorf("err = %v, want ErrBlockNotFound", err)
	}
}

func TestAllBlocks_Stateless(t *testing.T) {
	reg := testRegistry(t)
	o := generate.NewOrchestrator(reg, staticProvider(`{"generatedBlocks":{"task":"T","persona":"P"}}`, nil), generate.Options{})
	ctx := context.Background()

	got, err := o.AllBlocks(ctx, schema.AllBlocksRequest{TemplateID: "plan", UserPrompt: "goal"})
	if err != nil {
		t.Fatalf("AllBlocks: %v", err)
	}
	if len(got) != 1 || got["task"] != "T" {
		t.Errorf("generated = %v, want only template types", got)
	}

	if _, err := o.AllBlocks(ctx, schema.AllBlocksRequest{TemplateID: "missing", UserPrompt: "goal"}); !errors.Is(err, registry.ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}

	bare := generate.NewOrchestrator(reg, staticProvider(`{"task":"T"}`, nil), generate.Options{})
	_, err = bare.AllBlocks(ctx, schema.AllBlocksRequest{TemplateID: "plan", UserPrompt: "goal"})
	var gerr *generate.Error
	if !errors.As(err, &gerr) || gerr.Outcome != generate.OutcomeSchemaInvalid {
		t.Errorf("err = %v, want schema invalid", err)
	}
}

func TestSelector_FallbackChain(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		name     string
		provider llm.Provider
		want     string
	}{
		{"known id", staticProvider(`{"templateId":"plan"}`, nil), "plan"},
		{"unknown id", staticProvider(`{"templateId":"poetry"}`, nil), "general"},
		{"malformed", staticProvider(`{"template":"plan"}`, nil), "general"},
		{"provider error", llm.ProviderFunc(func(context.Context, llm.Call) ([]byte, error) {
			return nil, errors.New("connection refused")
		}), "general"},
		{"no provider", nil, "general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := generate.NewOrchestrator(reg, tt.provider, generate.Options{})
			got := o.Selector().Select(context.Background(), "make a plan", "")
			if got.ID != tt.want {
				t.Errorf("Select = %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestQuickStart(t *testing.T) {
	reg := testRegistry(t)
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		if call.Schema == schema.TemplateSelectionJSONSchema {
			if call.Temperature != 0.3 {
				t.Errorf("selection temperature = %v", call.Temperature)
			}
			return []byte(`{"templateId":"plan"}`), nil
		}
		return []byte(`{"generatedBlocks":{"task":"T","format":"F"}}`), nil
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{})

	id, blocks, err := o.QuickStart(context.Background(), schema.QuickStartRequest{SimplePrompt: "plan", SelectedModel: "grok-3-mini"})
	if err != nil {
		t.Fatalf("QuickStart: %v", err)
	}
	if id != "plan" {
		t.Errorf("template = %q", id)
	}
	want := []string{"T", "keep", "F", ""}
	for i, b := range blocks {
		if b.Content != want[i] || !b.Enabled {
			t.Errorf("block %d = %q enabled=%v, want %q enabled", i, b.Content, b.Enabled, want[i])
		}
	}
}

func TestQuickStart_GenerationFailureKeepsDefaults(t *testing.T) {
	reg := testRegistry(t)
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		if call.Schema == schema.TemplateSelectionJSONSchema {
			return []byte(`{"templateId":"plan"}`), nil
		}
		return nil, errors.New("timeout")
	})
	o := generate.NewOrchestrator(reg, provider, generate.Options{})

	id, blocks, err := o.QuickStart(context.Background(), schema.QuickStartRequest{SimplePrompt: "plan", SelectedModel: "m"})
	if err != nil {
		t.Fatalf("QuickStart: %v", err)
	}
	if id != "plan" || len(blocks) != 4 || blocks[1].Content != "keep" || blocks[0].Content != "" {
		t.Errorf("id = %q blocks = %+v", id, blocks)
	}
}
