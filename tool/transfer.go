package tool

import (
	"github.com/XinyueZ/tinyagent/console"
	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/delegation"
)

// NewTransferToSubagentTool exposes single-target delegation to the model.
// A busy delegator is reported through the returned message, never as an
// error; the model is expected to retry or move on.
func NewTransferToSubagentTool(d *delegation.Delegator) *FunctionTool {
	return NewFunctionTool(
		"transfer_to_subagent",
		`Transfer a task from an agent to a sub-agent. The agent hands off the task to the sub-agent. `+
			`**WARNING**: This is the "ONE-TO-ONE" transfer pattern, the sub-agent will execute the task and return the result.`,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"from_agent": map[string]any{
					"type":        "string",
					"description": "Name of an agent, which transfers the task.",
				},
				"to_subagent": map[string]any{
					"type":        "string",
					"description": "Name of a sub-agent, which receives the task.",
				},
				"task": map[string]any{
					"type":        "string",
					"description": "The task to transfer.",
				},
			},
			"required": []string{"from_agent", "to_subagent", "task"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			from := stringArg(args, "from_agent")
			to := stringArg(args, "to_subagent")
			task := stringArg(args, "task")

			console.Transfer(from, []string{to}, task)

			outcome, err := d.TransferSingle(tc.Context(), from, to, task)
			if err != nil {
				return nil, err
			}
			return outcome.Message, nil
		},
	)
}

// NewTransferToSubagentsTool exposes parallel fan-out delegation to the
// model. The result maps every requested sub-agent name to its status
// message; a failing sub-agent shows its error there without affecting the
// others. Under contention the whole call is reported busy.
func NewTransferToSubagentsTool(d *delegation.Delegator) *FunctionTool {
	return NewFunctionTool(
		"transfer_to_subagents",
		`Transfer the same task to multiple sub-agents in parallel. `+
			`**WARNING**: This is the "ONE-TO-MANY" transfer pattern, all sub-agents will execute the same task concurrently and return their results. `+
			`Only sub-agents that support parallel fan-out can be used with this tool.`,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"from_agent": map[string]any{
					"type":        "string",
					"description": "Name of an agent, which transfers the task.",
				},
				"to_subagents": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "List of sub-agent names, which receive the task.",
				},
				"task": map[string]any{
					"type":        "string",
					"description": "The task to transfer.",
				},
			},
			"required": []string{"from_agent", "to_subagents", "task"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			from := stringArg(args, "from_agent")
			task := stringArg(args, "task")

			raw, _ := args["to_subagents"].([]any)
			to := make([]string, 0, len(raw))
			for _, v := range raw {
				if s, ok := v.(string); ok {
					to = append(to, s)
				}
			}

			console.Transfer(from, to, task)

			fanout, err := d.TransferMany(tc.Context(), from, to, task)
			if err != nil {
				return nil, err
			}
			if fanout.State == delegation.StateBusy {
				return map[string]string{"__busy__": fanout.Message}, nil
			}

			results := make(map[string]string, len(fanout.Statuses))
			for name, outcome := range fanout.Statuses {
				results[name] = outcome.Message
			}
			return results, nil
		},
	)
}
