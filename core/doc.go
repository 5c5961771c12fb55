// Package core defines the shared contracts of the tinyagent runtime: the
// Agent interface implemented by executable agents, the AgentInfo identity
// snapshot carried through contexts and logs, the per-call ToolContext handed
// to tool implementations, and the Workspace storage boundary.
//
// Keeping these contracts in one leaf package lets the registry, delegation
// and tool packages depend on each other's behavior without import cycles.
package core
