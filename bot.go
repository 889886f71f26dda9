// Package rag wires the selector, dispatch coordinator, synthesizer and
// session memory into a single query-answering bot. Each query runs as one
// cycle through a small state machine; the only fatal state is a failed
// synthesis.
package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/dispatch"
	"github.com/berkincetin/agentic-rag-framework/src/memory"
	"github.com/berkincetin/agentic-rag-framework/src/models"
	"github.com/berkincetin/agentic-rag-framework/src/router"
	"github.com/berkincetin/agentic-rag-framework/src/synthesis"
	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

// State names one phase of a query cycle.
type State string

const (
	StateIdle         State = "idle"
	StateSelecting    State = "selecting"
	StateDispatching  State = "dispatching"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

const defaultSystemPrompt = "You are a knowledgeable assistant. Answer using the retrieved context and the conversation so far."

// Bot answers queries for one persona. A Bot is safe for concurrent use;
// concurrent cycles share only the session-keyed memory store.
type Bot struct {
	name         string
	systemPrompt string
	registry     *tools.Registry
	selector     *router.Selector
	coordinator  *dispatch.Coordinator
	synthesizer  *synthesis.Synthesizer
	memory       *memory.Store
	historyTurns int
	logger       zerolog.Logger
}

// Options configure a new Bot. Oracle and Tools are required; everything else
// has a usable default.
type Options struct {
	Name         string
	SystemPrompt string
	Oracle       models.Oracle
	Tools        []tools.Tool
	MaxTurns     int           // memory cap per session
	HistoryTurns int           // turns rendered into prompts
	ToolTimeout  time.Duration // per-invocation bound
	MaxTools     int           // per-cycle invocation cap
	Logger       zerolog.Logger
}

// New builds a Bot from options.
func New(opts Options) (*Bot, error) {
	if opts.Oracle == nil {
		return nil, errors.New("bot requires a completion oracle")
	}
	if len(opts.Tools) == 0 {
		return nil, errors.New("bot requires at least one tool")
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "default"
	}
	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	historyTurns := opts.HistoryTurns
	if historyTurns <= 0 {
		historyTurns = 10
	}

	reg := tools.NewRegistry(nil)
	for _, t := range opts.Tools {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger.With().Str("component", "bot").Str("bot", name).Logger()

	return &Bot{
		name:         name,
		systemPrompt: systemPrompt,
		registry:     reg,
		selector:     &router.Selector{Oracle: opts.Oracle, Logger: logger},
		coordinator:  &dispatch.Coordinator{Timeout: opts.ToolTimeout, MaxTools: opts.MaxTools, Logger: logger},
		synthesizer:  &synthesis.Synthesizer{Oracle: opts.Oracle, Logger: logger},
		memory:       memory.NewStore(opts.MaxTurns),
		historyTurns: historyTurns,
		logger:       logger,
	}, nil
}

// Name returns the bot's identifier.
func (b *Bot) Name() string { return b.name }

// ToolNames returns the enabled tool identifiers in declaration order.
func (b *Bot) ToolNames() []string { return b.registry.Names() }

// ClearMemory drops the session's conversation history.
func (b *Bot) ClearMemory(sessionID string) { b.memory.Clear(sessionID) }

// cycle is the per-query unit of work. It owns the state, the plan and the
// results; nothing here is shared between cycles.
type cycle struct {
	id        string
	sessionID string
	query     string
	state     State
	selection router.Selection
	results   []tools.Result
	logger    zerolog.Logger
}

func (c *cycle) transition(to State) {
	c.logger.Debug().Str("from", string(c.state)).Str("to", string(to)).Msg("cycle state")
	c.state = to
}

// Query runs one full cycle: select tools, dispatch them, synthesize the
// answer, then commit both turns to memory. Tool failures degrade the answer;
// only a synthesis failure aborts the cycle.
func (b *Bot) Query(ctx context.Context, sessionID, text string) (Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, errors.New("query is empty")
	}

	c := &cycle{
		id:        uuid.NewString(),
		sessionID: sessionID,
		query:     text,
		state:     StateIdle,
	}
	c.logger = b.logger.With().Str("cycle", c.id).Str("session", sessionID).Logger()
	c.logger.Info().Str("query", text).Msg("cycle started")

	history := memory.Render(b.memory.Window(sessionID, b.historyTurns))

	c.transition(StateSelecting)
	selection, err := b.selector.Select(ctx, text, history, b.registry)
	if err != nil {
		c.transition(StateFailed)
		return Answer{}, err
	}
	c.selection = selection
	if selection.Degraded {
		c.logger.Warn().Strs("tools", selection.Tools).Msg("tool selection degraded")
	}

	// An empty selection is a deliberate decision, not an error: synthesis
	// runs on conversation history alone.
	if len(selection.Tools) > 0 {
		c.transition(StateDispatching)
		c.results = b.coordinator.Run(ctx, b.plan(selection.Tools, sessionID, text))
	}

	c.transition(StateSynthesizing)
	answerText, err := b.synthesizer.Synthesize(ctx, synthesis.Input{
		SystemPrompt: b.systemPrompt,
		History:      history,
		Query:        text,
		Results:      c.results,
	})
	if err != nil {
		c.transition(StateFailed)
		c.logger.Error().Err(err).Msg("cycle failed")
		return Answer{}, &SynthesisError{CycleID: c.id, Err: err}
	}

	b.memory.Append(sessionID, memory.RoleUser, text)
	b.memory.Append(sessionID, memory.RoleAssistant, answerText)

	c.transition(StateDone)
	c.logger.Info().Int("tools", len(c.results)).Msg("cycle done")

	return Answer{
		Text:          answerText,
		SelectedTools: selection.Tools,
		Reasoning:     selection.Reasoning,
		Degraded:      selection.Degraded,
		ToolResults:   c.results,
		CycleID:       c.id,
	}, nil
}

// plan resolves selected identifiers against the registry in declaration
// order. Identifiers were validated during selection; a vanished tool is
// skipped rather than trusted.
func (b *Bot) plan(selected []string, sessionID, query string) dispatch.Plan {
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		want[strings.ToLower(name)] = true
	}

	var p dispatch.Plan
	for _, name := range b.registry.Names() {
		if !want[name] {
			continue
		}
		tool, ok := b.registry.Lookup(name)
		if !ok {
			continue
		}
		p.Invocations = append(p.Invocations, dispatch.Invocation{
			Tool:    tool,
			Request: tools.Request{SessionID: sessionID, Query: query},
		})
	}
	return p
}
