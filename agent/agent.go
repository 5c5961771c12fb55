package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/delegation"
	"github.com/XinyueZ/tinyagent/internal/goid"
	"github.com/XinyueZ/tinyagent/logging"
	"github.com/XinyueZ/tinyagent/model"
	"github.com/XinyueZ/tinyagent/registry"
	"github.com/XinyueZ/tinyagent/tool"
)

// DefaultMaxTurns caps the model / tool rounds of one invocation.
const DefaultMaxTurns = 50

// AffinityError reports a concurrent invocation of an agent that is already
// executing on another goroutine. It is fatal for that call; the caller must
// not retry on the same goroutine interleaving.
type AffinityError struct {
	Agent  string
	Owner  uint64
	Caller uint64
}

func (e *AffinityError) Error() string {
	return fmt.Sprintf("agent %q is executing on goroutine %d; concurrent invocation from goroutine %d is not allowed",
		e.Agent, e.Owner, e.Caller)
}

// Config carries everything an Agent needs at construction time. Name, Model,
// OutputRoot, Registry and Workspace are required; the rest is optional.
type Config struct {
	// Name is the globally unique agent name.
	Name string
	// Model generates responses and tool calls.
	Model model.Model
	// OutputRoot is the parent location of the agent's private storage. The
	// final output location is {OutputRoot}/{Name}-{id}.
	OutputRoot string
	// Subagent marks the agent as a valid single-target delegation recipient.
	Subagent bool
	// ParallelFanout additionally allows the agent to take part in parallel
	// fan-out delegation.
	ParallelFanout bool
	// Instruction is appended to the built-in work instructions.
	Instruction string
	// Description is shown to parent agents when they pick a delegation
	// target. Defaults to a generic line naming the agent.
	Description string
	// Tools are custom tools bound to this agent next to the builtins.
	Tools []tool.Tool
	// Subagents this agent may delegate to. Every entry must be constructed
	// with Subagent set.
	Subagents []*Agent
	// Registry the agent registers with; required.
	Registry *registry.Registry
	// Delegator wired into the transfer tools. When nil the agent gets no
	// transfer tools even if it has subagents.
	Delegator *delegation.Delegator
	// Workspace backs the agent's private storage; required.
	Workspace core.Workspace
	// Logger; nil disables logging.
	Logger logging.Logger
	// MaxTurns caps model / tool rounds per invocation. 0 means
	// DefaultMaxTurns.
	MaxTurns int
}

// Agent is a model-driven worker with a private storage location, a bound
// tool set and optional subagents it can delegate to. An agent registers
// itself on construction and stays registered until Close.
//
// An Agent is exclusive to one goroutine while Invoke runs; a second
// goroutine calling Invoke concurrently gets an AffinityError. Sequential
// invocations from different goroutines, including delegation pool
// dispatches, are fine.
type Agent struct {
	id             string
	name           string
	description    string
	instruction    string
	outputLocation string
	subagent       bool
	parallelFanout bool
	maxTurns       int

	llm      model.Model
	registry *registry.Registry
	ws       core.Workspace
	logger   logging.Logger

	tools     map[string]*tool.Bound
	toolOrder []string

	// subMu guards the subagent maps: AppendSubagent may race with lookups
	// from a delegation in flight or a registry teardown.
	subMu         sync.RWMutex
	subagents     map[string]*Agent
	subagentOrder []string

	// owner is the id of the goroutine currently executing Invoke, 0 when
	// idle.
	owner atomic.Uint64
}

// New constructs and registers an agent. The agent id is minted from the
// current time in microseconds plus a UUID, making the private output
// location collision-free even for agents sharing a name history.
func New(cfg Config) (*Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent %q: model is required", cfg.Name)
	}
	if cfg.OutputRoot == "" {
		return nil, fmt.Errorf("agent %q: output root is required", cfg.Name)
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("agent %q: registry is required", cfg.Name)
	}
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("agent %q: workspace is required", cfg.Name)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	id := fmt.Sprintf("%d-%s", time.Now().UnixMicro(), uuid.NewString())

	a := &Agent{
		id:             id,
		name:           cfg.Name,
		description:    cfg.Description,
		instruction:    cfg.Instruction,
		outputLocation: path.Join(cfg.OutputRoot, cfg.Name+"-"+id),
		subagent:       cfg.Subagent,
		parallelFanout: cfg.ParallelFanout,
		maxTurns:       maxTurns,
		llm:            cfg.Model,
		registry:       cfg.Registry,
		ws:             cfg.Workspace,
		logger:         logger,
		tools:          make(map[string]*tool.Bound),
		subagents:      make(map[string]*Agent),
	}
	if a.description == "" {
		a.description = fmt.Sprintf("Agent %s", a.name)
	}

	all := tool.Builtins()
	all = append(all, cfg.Tools...)
	if cfg.Delegator != nil {
		all = append(all,
			tool.NewTransferToSubagentTool(cfg.Delegator),
			tool.NewTransferToSubagentsTool(cfg.Delegator),
		)
	}
	for _, t := range all {
		if _, exists := a.tools[t.Name()]; exists {
			return nil, fmt.Errorf("agent %q: duplicate tool %q", cfg.Name, t.Name())
		}
		a.tools[t.Name()] = tool.Bind(t, a.Info(), cfg.Workspace, logger)
		a.toolOrder = append(a.toolOrder, t.Name())
	}

	for _, sub := range cfg.Subagents {
		if err := a.attachSubagent(sub); err != nil {
			return nil, err
		}
	}

	if err := cfg.Registry.Register(a); err != nil {
		return nil, err
	}

	logger.Info("agent.created", "name", a.name, "agent_id", a.id, "output_location", a.outputLocation)

	return a, nil
}

func (a *Agent) attachSubagent(sub *Agent) error {
	if sub == nil {
		return fmt.Errorf("agent %q: nil subagent", a.name)
	}
	if !sub.subagent {
		return fmt.Errorf("agent %q: %q was not constructed as a subagent", a.name, sub.name)
	}
	if sub.name == a.name {
		return fmt.Errorf("agent %q: subagent name cannot equal the parent agent name", a.name)
	}

	a.subMu.Lock()
	defer a.subMu.Unlock()
	if _, exists := a.subagents[sub.name]; exists {
		return fmt.Errorf("agent %q: duplicate subagent name %q", a.name, sub.name)
	}
	a.subagents[sub.name] = sub
	a.subagentOrder = append(a.subagentOrder, sub.name)
	return nil
}

// AppendSubagent attaches another subagent after construction.
func (a *Agent) AppendSubagent(sub *Agent) error {
	return a.attachSubagent(sub)
}

// ID returns the unique agent id.
func (a *Agent) ID() string { return a.id }

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description used by delegating parents.
func (a *Agent) Description() string { return a.description }

// OutputLocation returns the agent's private storage location.
func (a *Agent) OutputLocation() string { return a.outputLocation }

// Subagent reports whether the agent can receive delegated tasks.
func (a *Agent) Subagent() bool { return a.subagent }

// ParallelFanout reports whether the agent may take part in parallel fan-out
// delegation.
func (a *Agent) ParallelFanout() bool { return a.parallelFanout }

// Info returns the agent's identity snapshot.
func (a *Agent) Info() core.AgentInfo {
	return core.AgentInfo{
		ID:             a.id,
		Name:           a.name,
		OutputLocation: a.outputLocation,
		Subagent:       a.subagent,
		ParallelFanout: a.parallelFanout,
	}
}

// SubagentByName looks up a direct subagent.
func (a *Agent) SubagentByName(name string) (core.Agent, bool) {
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	sub, ok := a.subagents[name]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Subagents returns the direct subagents in attachment order.
func (a *Agent) Subagents() []core.Agent {
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	out := make([]core.Agent, 0, len(a.subagentOrder))
	for _, name := range a.subagentOrder {
		out = append(out, a.subagents[name])
	}
	return out
}

// Tools returns the names of the agent's bound tools in binding order.
func (a *Agent) Tools() []string {
	out := make([]string, len(a.toolOrder))
	copy(out, a.toolOrder)
	return out
}

// Close unregisters the agent and, recursively, its subagent subtree. The
// agent's name becomes available for reuse afterwards.
func (a *Agent) Close() {
	a.registry.Unregister(a.id)
}

// Invoke runs one task to completion: assemble the prompt, then alternate
// model responses and tool executions until the model answers without tool
// calls or the turn cap is hit. The returned string is the model's final
// text.
func (a *Agent) Invoke(ctx context.Context, task string) (string, error) {
	gid := goid.ID()
	claimed := false
	for {
		if a.owner.CompareAndSwap(0, gid) {
			claimed = true
			break
		}
		owner := a.owner.Load()
		if owner == gid {
			// Reentrant call on the owning goroutine.
			break
		}
		if owner != 0 {
			return "", &AffinityError{Agent: a.name, Owner: owner, Caller: gid}
		}
		// The previous invocation released ownership between the swap and
		// the load; claim again instead of reporting a stale owner.
	}
	if claimed {
		defer a.owner.Store(0)
	}

	ctx = core.WithActiveAgent(ctx, a.Info())

	defs := make([]model.ToolDefinition, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		b := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        b.Name(),
			Description: b.Description(),
			Parameters:  b.Parameters(),
		})
	}

	messages := []model.Message{{Role: "user", Text: a.buildPrompt(task)}}

	a.logger.Info("agent.invoke.start", "name", a.name, "agent_id", a.id)

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.llm.Generate(ctx, model.Request{
			Instructions: systemInstruction,
			Messages:     messages,
			Tools:        defs,
		})
		if err != nil {
			return "", fmt.Errorf("agent %q: generate: %w", a.name, err)
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Info("agent.invoke.done", "name", a.name, "turns", turn+1)
			return resp.Text, nil
		}

		messages = append(messages, model.Message{
			Role:      "assistant",
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		results := make([]model.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, model.ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Content: a.executeToolCall(ctx, call),
			})
		}
		messages = append(messages, model.Message{Role: "tool", ToolResults: results})
	}

	return "", fmt.Errorf("agent %q: no final response after %d turns", a.name, a.maxTurns)
}

// executeToolCall runs one model-requested tool call and renders the content
// fed back to the model. Tool failures become text the model can react to
// instead of aborting the invocation.
func (a *Agent) executeToolCall(ctx context.Context, call model.ToolCall) string {
	bound, ok := a.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return fmt.Sprintf("Invalid arguments for tool %s: %v", call.Name, err)
		}
	}

	env, err := bound.Call(ctx, args)
	if err != nil {
		a.logger.Warn("agent.tool.failed", "name", a.name, "tool", call.Name, "error", err.Error())
		return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
	}
	return env.RawResponse
}
