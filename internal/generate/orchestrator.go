// Package generate turns a user's goal into block content: it builds the
// provider prompts, calls the provider, validates the answer and maps it
// onto the blocks that were asked for.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/metrics"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
	"github.com/joestump/blockprompt/internal/session"
)

// Options tune the orchestrator. Zero values fall back to defaults.
type Options struct {
	DefaultModel string
	Temperature  float32
	Timeout      time.Duration
}

const (
	defaultModel       = "grok-3-mini"
	defaultTemperature = 0.7
)

// Orchestrator runs generations, either stateless or against a session.
type Orchestrator struct {
	caller
	reg      *registry.Registry
	builder  *Builder
	selector *Selector
	model    string
	temp     float32
	now      func() time.Time
}

// NewOrchestrator returns an orchestrator. A nil provider is allowed; every
// generation then fails with ErrNoProvider and template selection falls
// back to the default template.
func NewOrchestrator(reg *registry.Registry, provider llm.Provider, opts Options) *Orchestrator {
	if opts.DefaultModel == "" {
		opts.DefaultModel = defaultModel
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	c := caller{provider: provider, timeout: opts.Timeout}
	b := NewBuilder()
	return &Orchestrator{
		caller:   c,
		reg:      reg,
		builder:  b,
		selector: &Selector{caller: c, reg: reg, builder: b},
		model:    opts.DefaultModel,
		temp:     opts.Temperature,
		now:      time.Now,
	}
}

// Enabled reports whether a provider is configured.
func (o *Orchestrator) Enabled() bool { return o.provider != nil }

// Selector returns the template selector.
func (o *Orchestrator) Selector() *Selector { return o.selector }

// Result describes a session-scoped generation that got past its guards.
type Result struct {
	Outcome  Outcome          `json:"outcome"`
	Applied  []int            `json:"applied,omitempty"`
	Ignored  []string         `json:"ignored,omitempty"`
	Metadata *schema.Metadata `json:"metadata,omitempty"`
	Message  string           `json:"message,omitempty"`
	Err      *Error           `json:"-"`
}

// Failed reports whether the generation left the blocks unchanged because
// of a provider or schema failure.
func (r Result) Failed() bool { return r.Err != nil }

// BlockContent generates content for one block outside any session.
func (o *Orchestrator) BlockContent(ctx context.Context, req schema.GenerationRequest) (schema.BlockContent, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return schema.BlockContent{}, ErrEmptyGoal
	}
	spec, err := o.reg.BlockSpec(req.BlockType)
	if err != nil {
		return schema.BlockContent{}, err
	}
	return o.blockContent(ctx, spec, req)
}

func (o *Orchestrator) blockContent(ctx context.Context, spec registry.BlockSpec, req schema.GenerationRequest) (schema.BlockContent, error) {
	prompts, err := o.builder.SingleBlock(spec, req)
	if err != nil {
		return schema.BlockContent{}, err
	}
	content, err := invoke(ctx, o.caller, metrics.ModeSingle, llm.Call{
		Model:       o.modelFor(req.SelectedModel),
		System:      prompts.System,
		Prompt:      prompts.User,
		Schema:      schema.SingleBlockJSONSchema,
		Temperature: o.temp,
	}, schema.DecodeSingleBlockResponse)
	if err != nil {
		return schema.BlockContent{}, err
	}

	if content.Metadata.BlockType == "" {
		content.Metadata.BlockType = spec.Type
	}
	content.Metadata.IsEnhancement = prompts.Enhance
	if content.Metadata.Timestamp == "" {
		content.Metadata.Timestamp = o.now().UTC().Format(time.RFC3339)
	}
	return content, nil
}

// AllBlocks generates content for every known block of a template outside
// any session. Types the template does not contain are dropped.
func (o *Orchestrator) AllBlocks(ctx context.Context, req schema.AllBlocksRequest) (map[string]string, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, ErrEmptyGoal
	}
	t, err := o.reg.Template(req.TemplateID)
	if err != nil {
		return nil, err
	}
	targets := o.reg.KnownBlocks(t)
	if len(targets) == 0 {
		return nil, fmt.Errorf("template %q: %w", t.ID, ErrNoTargets)
	}

	generated, err := o.allBlocks(ctx, metrics.ModeBulk, t, targets, req.UserPrompt, req.SystemPrompt, req.SelectedModel)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(targets))
	for _, rb := range targets {
		if c, ok := generated[rb.Ref.Type]; ok {
			out[rb.Ref.Type] = c
		}
	}
	if ignored := untargeted(generated, targets); len(ignored) > 0 {
		log.Printf("generate: ignoring block types outside template %q: %v", t.ID, ignored)
	}
	return out, nil
}

func (o *Orchestrator) allBlocks(ctx context.Context, mode string, t registry.TemplateSpec, targets []registry.ResolvedBlock, goal, system, model string) (map[string]string, error) {
	prompts, err := o.builder.AllBlocks(t, targets, goal, system)
	if err != nil {
		return nil, err
	}
	return invoke(ctx, o.caller, mode, llm.Call{
		Model:       o.modelFor(model),
		System:      prompts.System,
		Prompt:      prompts.User,
		Schema:      schema.AllBlocksJSONSchema,
		Temperature: o.temp,
	}, schema.DecodeAllBlocksResponse)
}

// QuickStart picks a template for goal and fills every known block of it.
// When generation fails the template's default contents are returned; the
// caller always gets a usable block set.
func (o *Orchestrator) QuickStart(ctx context.Context, req schema.QuickStartRequest) (string, []block.Instance, error) {
	if strings.TrimSpace(req.SimplePrompt) == "" {
		return "", nil, ErrEmptyGoal
	}
	t := o.selector.Select(ctx, req.SimplePrompt, o.modelFor(req.SelectedModel))
	targets := o.reg.KnownBlocks(t)
	if len(targets) == 0 {
		return t.ID, block.Populate(o.reg, t, nil), nil
	}

	generated, err := o.allBlocks(ctx, metrics.ModeQuickStart, t, targets, req.SimplePrompt, "", req.SelectedModel)
	if err != nil {
		log.Printf("generate: quick start for %q kept default contents: %v", t.ID, err)
		generated = nil
	}
	return t.ID, block.Populate(o.reg, t, generated), nil
}

// GenerateBlock fills or enhances block index of sess. Guard failures are
// returned as errors and leave the session untouched. Once the block is
// marked pending, the outcome is reported in the Result and the pending
// mark is always cleared.
func (o *Orchestrator) GenerateBlock(ctx context.Context, sess *session.Session, index int, req schema.GoalRequest) (Result, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		sess.Notify(session.Event{Type: session.EventNotice, Message: "Enter a goal before generating content."})
		return Result{}, ErrEmptyGoal
	}
	if !o.Enabled() {
		return Result{}, ErrNoProvider
	}

	blocks, token := sess.Blocks()
	if index < 0 || index >= len(blocks) {
		return Result{}, fmt.Errorf("block %d: %w", index, session.ErrIndexOutOfRange)
	}
	target := blocks[index]
	spec, err := o.reg.BlockSpec(target.Type)
	if err != nil {
		return Result{}, err
	}

	ticket, err := sess.Begin([]int{index}, false)
	if err != nil {
		return Result{}, refused(sess, err)
	}
	defer sess.Finish(ticket)
	if ticket.Token != token {
		return Result{}, session.ErrStaleGeneration
	}
	// Pending blocks cannot be edited, so the content read now is the
	// content the request is built from.
	blocks, _ = sess.Blocks()
	target = blocks[index]

	content, err := o.blockContent(ctx, spec, schema.GenerationRequest{
		BlockType:       target.Type,
		BlockLabel:      target.Label,
		UserPrompt:      req.UserPrompt,
		ExistingContent: target.Content,
		SystemPrompt:    req.SystemPrompt,
		SelectedModel:   o.modelFor(req.SelectedModel, sess.Model()),
		Mode:            req.Mode,
	})
	if err != nil {
		return o.failed(sess, ticket, err, []string{target.Label})
	}

	if err := sess.Apply(ticket, map[int]string{index: content.Content}); err != nil {
		return o.discarded(sess.ID, err)
	}
	return Result{Outcome: OutcomeSuccess, Applied: []int{index}, Metadata: &content.Metadata}, nil
}

// GenerateEmpty fills every enabled, empty block of sess in one provider
// call. Only the blocks targeted when the call was issued are written.
func (o *Orchestrator) GenerateEmpty(ctx context.Context, sess *session.Session, req schema.GoalRequest) (Result, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		sess.Notify(session.Event{Type: session.EventNotice, Message: "Enter a goal before generating content."})
		return Result{}, ErrEmptyGoal
	}
	if !o.Enabled() {
		return Result{}, ErrNoProvider
	}

	blocks, token := sess.Blocks()
	slots, _ := o.emptySlots(blocks, nil)
	if len(slots) == 0 {
		sess.Notify(session.Event{Type: session.EventNotice, Message: noTargetsNotice})
		return Result{}, ErrNoTargets
	}

	indices := make([]int, len(slots))
	for i, s := range slots {
		indices[i] = s.index
	}
	ticket, err := sess.Begin(indices, true)
	if err != nil {
		return Result{}, refused(sess, err)
	}
	defer sess.Finish(ticket)
	if ticket.Token != token {
		return Result{}, session.ErrStaleGeneration
	}

	// A block edited between the first read and Begin is no longer a target.
	blocks, _ = sess.Blocks()
	slots, targets := o.emptySlots(blocks, ticket.Targets)
	if len(slots) == 0 {
		sess.Notify(session.Event{Type: session.EventNotice, Message: noTargetsNotice})
		return Result{}, ErrNoTargets
	}

	t, _ := o.reg.Resolve(sess.TemplateID())
	generated, err := o.allBlocks(ctx, metrics.ModeBulk, t, targets, req.UserPrompt, req.SystemPrompt, o.modelFor(req.SelectedModel, sess.Model()))
	if err != nil {
		labels := make([]string, len(targets))
		for i, rb := range targets {
			labels[i] = rb.Ref.Label
		}
		return o.failed(sess, ticket, err, labels)
	}

	updates, ignored := mapGenerated(slots, generated)
	if len(ignored) > 0 {
		log.Printf("generate: session %s: ignoring untargeted block types %v", sess.ID, ignored)
	}
	if err := sess.Apply(ticket, updates); err != nil {
		return o.discarded(sess.ID, err)
	}

	applied := make([]int, 0, len(updates))
	for i := range updates {
		applied = append(applied, i)
	}
	slices.Sort(applied)
	return Result{Outcome: OutcomeSuccess, Applied: applied, Ignored: ignored}, nil
}

const noTargetsNotice = "No empty enabled blocks to generate."

// emptySlots returns the enabled, empty blocks with a known spec. A nil
// within admits every index.
func (o *Orchestrator) emptySlots(blocks []block.Instance, within func(int) bool) ([]slot, []registry.ResolvedBlock) {
	var (
		slots   []slot
		targets []registry.ResolvedBlock
	)
	for i, b := range blocks {
		if !b.Enabled || !b.IsEmpty() || (within != nil && !within(i)) {
			continue
		}
		spec, err := o.reg.BlockSpec(b.Type)
		if err != nil {
			continue
		}
		slots = append(slots, slot{index: i, blockType: b.Type})
		targets = append(targets, registry.ResolvedBlock{
			Ref:  registry.BlockRef{Type: b.Type, Label: b.Label},
			Spec: spec,
		})
	}
	return slots, targets
}

// refused tells the session's listeners why a generation could not start.
func refused(sess *session.Session, err error) error {
	var msg string
	switch {
	case errors.Is(err, session.ErrBulkInFlight):
		msg = "Wait for the current generation to finish."
	case errors.Is(err, session.ErrBlockPending):
		msg = "That block is already being generated."
	default:
		return err
	}
	sess.Notify(session.Event{Type: session.EventNotice, Message: msg})
	return err
}

// slot is one targeted block of a bulk generation.
type slot struct {
	index     int
	blockType string
}

// mapGenerated assigns each generated entry to the first targeted slot of
// the same type. Entries with no such slot, or with blank content, are not
// applied; the former are returned as ignored.
func mapGenerated(slots []slot, generated map[string]string) (map[int]string, []string) {
	types := make([]string, 0, len(generated))
	for typ := range generated {
		types = append(types, typ)
	}
	slices.Sort(types)

	updates := map[int]string{}
	var ignored []string
	for _, typ := range types {
		i := slices.IndexFunc(slots, func(s slot) bool { return s.blockType == typ })
		if i < 0 {
			ignored = append(ignored, typ)
			continue
		}
		if strings.TrimSpace(generated[typ]) == "" {
			continue
		}
		updates[slots[i].index] = generated[typ]
	}
	return updates, ignored
}

func untargeted(generated map[string]string, targets []registry.ResolvedBlock) []string {
	var out []string
	for typ := range generated {
		if !slices.ContainsFunc(targets, func(rb registry.ResolvedBlock) bool { return rb.Ref.Type == typ }) {
			out = append(out, typ)
		}
	}
	slices.Sort(out)
	return out
}

// failed reports a provider or schema failure with a single notification
// naming every affected block.
func (o *Orchestrator) failed(sess *session.Session, ticket *session.Ticket, err error, labels []string) (Result, error) {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return Result{}, err
	}
	msg := "Failed to generate content for " + strings.Join(labels, ", ") + "."
	sess.Notify(session.Event{Type: session.EventFailed, Indices: ticket.Indices, Message: msg, Token: ticket.Token})
	return Result{Outcome: gerr.Outcome, Message: msg, Err: gerr}, nil
}

func (o *Orchestrator) discarded(sessionID string, err error) (Result, error) {
	if !errors.Is(err, session.ErrStaleGeneration) {
		return Result{}, err
	}
	log.Printf("generate: session %s: discarding result for replaced block set", sessionID)
	return Result{Outcome: OutcomeDiscarded}, nil
}

func (o *Orchestrator) modelFor(candidates ...string) string {
	for _, m := range candidates {
		if m != "" {
			return m
		}
	}
	return o.model
}
