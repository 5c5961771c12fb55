package core

import (
	"context"
	"fmt"
	"runtime"
)

// ctxKey is the private key type for values stored by this package.
type ctxKey int

const activeAgentKey ctxKey = iota

// WithActiveAgent derives a context carrying the identity of the agent that
// is about to execute a tool. Because the value travels with the call's
// context rather than living on the (shared) tool object, two agents invoking
// the same tool concurrently each observe only their own identity.
func WithActiveAgent(ctx context.Context, info AgentInfo) context.Context {
	return context.WithValue(ctx, activeAgentKey, info)
}

// ActiveAgent returns the identity of the agent currently executing on this
// call path, if one was set. It is the authoritative identity channel; any
// fallback stored on a bound tool must only be consulted when this reports
// false.
func ActiveAgent(ctx context.Context) (AgentInfo, bool) {
	info, ok := ctx.Value(activeAgentKey).(AgentInfo)
	return info, ok
}

// CallerInfo captures where a tool invocation originated. It is diagnostic
// metadata only and has no effect on identity resolution.
type CallerInfo struct {
	File     string `json:"caller_file"`
	Line     int    `json:"caller_line"`
	Function string `json:"caller_function"`
}

// String renders the caller as "function (file:line)".
func (c CallerInfo) String() string {
	return fmt.Sprintf("%s (%s:%d)", c.Function, c.File, c.Line)
}

// CaptureCaller records the call site skip+1 frames above the caller of
// CaptureCaller itself. A zero CallerInfo is returned when the stack cannot
// be resolved.
func CaptureCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallerInfo{}
	}
	info := CallerInfo{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		info.Function = fn.Name()
	}
	return info
}
