package core

import "context"

// Agent is the contract every executable agent satisfies. The registry tracks
// agents through this interface and the delegation protocol invokes them
// through it, so the concrete agent implementation stays decoupled from both.
//
// Implementations must:
//   - Register themselves with a Registry during construction
//   - Keep their identity fields (ID, Name, OutputLocation) immutable
//   - Reject concurrent cross-goroutine invocation (see agent.AffinityError)
type Agent interface {
	// ID returns the unique, collision-free agent identifier.
	ID() string

	// Name returns the globally unique human-readable agent name.
	Name() string

	// Info returns the identity snapshot for this agent.
	Info() AgentInfo

	// OutputLocation returns the workspace location the agent writes its
	// work plan, memory and result files to.
	OutputLocation() string

	// Subagent reports whether this agent was declared as a delegation target.
	Subagent() bool

	// ParallelFanout reports whether this agent may receive multi-target
	// (fan-out) delegation.
	ParallelFanout() bool

	// SubagentByName resolves a direct child by name.
	SubagentByName(name string) (Agent, bool)

	// Subagents returns the direct children of this agent.
	Subagents() []Agent

	// Invoke runs the agent synchronously on the calling goroutine with the
	// given task and returns its final text response.
	Invoke(ctx context.Context, task string) (string, error)
}

// AgentInfo is an immutable identity snapshot of an agent, used by tool
// contexts, result envelopes and structured logs. It deliberately carries no
// reference back to the live agent so it can be copied freely across
// goroutines.
type AgentInfo struct {
	ID             string `json:"agent_id"`
	Name           string `json:"agent_name"`
	OutputLocation string `json:"output_location"`
	Subagent       bool   `json:"is_subagent"`
	ParallelFanout bool   `json:"supports_parallel_fanout"`
}
