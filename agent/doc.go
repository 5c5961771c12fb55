// Package agent implements the model-driven agent: construction with a
// private output location and a bound tool set, prompt assembly, the
// automatic model / tool round loop and goroutine-exclusive invocation.
// Agents form delegation hierarchies through subagents and the transfer
// tools; see the delegation package for the hand-off protocol.
package agent
