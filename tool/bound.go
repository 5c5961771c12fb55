package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/logging"
)

// rawResponsePrompt frames the enriched response handed back to the model
// after every bound tool call.
const rawResponsePrompt = `**Response from this tool:**
%v

**Information about the agent using this tool:**
%s

**Information about the mechanism calling this tool:**
%s

**Here are all the interaction records (aka. the conversation history, memory, i.e., past information) so far; continue to work based on these records:**

- Work-plan: Record of the work-plan and the status of each step
- Memory: Record of the memory of the entire interaction **history** so far

Here are the interaction records so far:
%s`

// Envelope is the enriched result of one bound tool call. It pairs the raw
// tool response with the invoking agent's identity, the recorded call site
// and the agent's accumulated interaction history, plus a pre-rendered text
// form suitable for feeding straight back to the model.
type Envelope struct {
	ToolResponse any             `json:"tool_response"`
	Extra        string          `json:"extra"`
	Caller       core.CallerInfo `json:"caller_info"`
	Agent        core.AgentInfo  `json:"agent_info"`
	RawResponse  string          `json:"raw_response"`
}

// Bound is an agent-specific binding of a shared Tool. The binding carries
// the owning agent's identity as a fallback only; at call time the identity
// is resolved from the call's context first, so two agents sharing one Tool
// never observe each other through their bindings (see core.WithActiveAgent).
//
// The enrichment performed here is read-only decoration: the wrapper never
// writes to the workspace, it only reads the owning agent's work plan and
// memory to compose the envelope.
type Bound struct {
	tool   Tool
	info   core.AgentInfo
	ws     core.Workspace
	logger logging.Logger
}

// Bind creates an agent-specific binding of tool. A nil logger disables
// logging.
func Bind(t Tool, info core.AgentInfo, ws core.Workspace, logger logging.Logger) *Bound {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Bound{tool: t, info: info, ws: ws, logger: logger}
}

// Name returns the underlying tool's name.
func (b *Bound) Name() string { return b.tool.Name() }

// Description returns the underlying tool's description.
func (b *Bound) Description() string { return b.tool.Description() }

// Parameters returns the underlying tool's parameter schema.
func (b *Bound) Parameters() map[string]any { return b.tool.Parameters() }

// Tool returns the wrapped tool.
func (b *Bound) Tool() Tool { return b.tool }

// Call runs one invocation of the bound tool. It captures the call site,
// builds a fresh per-call ToolContext (identity from ctx when present, the
// binding's fallback otherwise), executes the tool and wraps the result into
// an Envelope. All metadata is scoped to this call and discarded afterwards.
func (b *Bound) Call(ctx context.Context, args map[string]any) (*Envelope, error) {
	caller := core.CaptureCaller(1)
	toolCtx := core.NewToolContext(ctx, b.info, caller, b.tool.Name(), b.ws, b.logger)

	result, err := b.tool.Call(toolCtx, args)
	if err != nil {
		return nil, err
	}

	agent := toolCtx.Agent()
	extra := b.history(agent, caller)

	agentJSON, _ := json.Marshal(agent)
	callerJSON, _ := json.Marshal(caller)

	return &Envelope{
		ToolResponse: result,
		Extra:        extra,
		Caller:       caller,
		Agent:        agent,
		RawResponse:  fmt.Sprintf(rawResponsePrompt, result, agentJSON, callerJSON, extra),
	}, nil
}

// history composes the agent's persisted interaction records. Missing files
// simply leave their section out.
func (b *Bound) history(agent core.AgentInfo, caller core.CallerInfo) string {
	var sb strings.Builder

	if b.ws != nil {
		if workPlan, err := b.ws.Read(path.Join(agent.OutputLocation, "work_plan.md")); err == nil && workPlan != "" {
			sb.WriteString("## Work-plan\n")
			sb.WriteString(workPlan)
			sb.WriteString("\n\n")
		}
		if memory, err := b.ws.Read(path.Join(agent.OutputLocation, "memory.md")); err == nil && memory != "" {
			sb.WriteString("## Memory\n")
			sb.WriteString(memory)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString(fmt.Sprintf("> caller_info: %s\n", caller))
	sb.WriteString(fmt.Sprintf("> agent_info: %s-%s", agent.Name, agent.ID))

	return sb.String()
}
