package core

import (
	"context"

	"github.com/XinyueZ/tinyagent/logging"
)

// ToolContext is the ephemeral, call-scoped surface handed to a tool body for
// exactly one invocation. It bundles the invoking agent's identity, the call
// site that triggered the invocation, the tool's function name and the
// workspace the agent persists to. A ToolContext is built immediately before
// the tool body runs and discarded right after; it is never shared between
// calls or stored.
type ToolContext struct {
	ctx      context.Context
	agent    AgentInfo
	caller   CallerInfo
	funcName string
	ws       Workspace

	*loggerAdapter
}

// NewToolContext builds a tool context for a single invocation. The invoking
// identity is resolved from ctx (see WithActiveAgent); fallback is only used
// when no context value is present, e.g. when a bound tool is exercised
// outside an agent call path for diagnostics.
func NewToolContext(
	ctx context.Context,
	fallback AgentInfo,
	caller CallerInfo,
	funcName string,
	ws Workspace,
	logger logging.Logger,
) *ToolContext {
	agent := fallback
	if active, ok := ActiveAgent(ctx); ok {
		agent = active
	}
	return &ToolContext{
		ctx:           ctx,
		agent:         agent,
		caller:        caller,
		funcName:      funcName,
		ws:            ws,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Agent returns the identity of the invoking agent.
func (tc *ToolContext) Agent() AgentInfo { return tc.agent }

// AgentID returns the invoking agent's id.
func (tc *ToolContext) AgentID() string { return tc.agent.ID }

// AgentName returns the invoking agent's name.
func (tc *ToolContext) AgentName() string { return tc.agent.Name }

// OutputLocation returns the invoking agent's private storage location.
func (tc *ToolContext) OutputLocation() string { return tc.agent.OutputLocation }

// Caller returns the call-site metadata recorded for this invocation.
func (tc *ToolContext) Caller() CallerInfo { return tc.caller }

// FuncName returns the name of the tool function being invoked.
func (tc *ToolContext) FuncName() string { return tc.funcName }

// Workspace returns the storage backend the invoking agent writes to, or nil
// when none was configured.
func (tc *ToolContext) Workspace() Workspace { return tc.ws }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// IsValid reports whether the context identifies an agent and a function.
func (tc *ToolContext) IsValid() bool {
	return tc.agent.ID != "" && tc.funcName != ""
}
