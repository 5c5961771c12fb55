package tool

import (
	"fmt"
	"path"
	"time"

	"github.com/fatih/color"

	"github.com/XinyueZ/tinyagent/console"
	"github.com/XinyueZ/tinyagent/core"
)

// Built-in tools every agent receives. They persist to the invoking agent's
// private output location through the workspace on the ToolContext, so one
// shared instance serves any number of agents.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// workPlanPath and friends name the per-agent record files.
func workPlanPath(tc *core.ToolContext) string {
	return path.Join(tc.OutputLocation(), "work_plan.md")
}

func memoryPath(tc *core.ToolContext) string {
	return path.Join(tc.OutputLocation(), "memory.md")
}

func reflectionPath(tc *core.ToolContext) string {
	return path.Join(tc.OutputLocation(), "reflection.md")
}

func bannerTitle(tc *core.ToolContext, action string) string {
	return fmt.Sprintf("%s-%s | %s", tc.AgentName(), tc.AgentID(), action)
}

// NewReadWorkPlanTool reads the agent's work plan record.
func NewReadWorkPlanTool() *FunctionTool {
	return NewFunctionTool(
		"read_work_plan",
		"Read the work-plan from the file.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := workPlanPath(tc)
			workPlan, err := tc.Workspace().Read(loc)
			if err != nil {
				console.Banner(bannerTitle(tc, "Read Work-plan"), "**No work-plan has been created yet.", color.FgYellow)
				return "**No work-plan has been created yet.", nil
			}
			console.Banner(bannerTitle(tc, "Read Work-plan"), workPlan, color.FgGreen)
			return fmt.Sprintf("Work-plan (saved in file: %s):\n%s", loc, workPlan), nil
		},
	)
}

// NewCreateWorkPlanTool writes the agent's initial work plan.
func NewCreateWorkPlanTool() *FunctionTool {
	return NewFunctionTool(
		"create_work_plan",
		"Create the work-plan.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"work_plan": map[string]any{
					"type":        "string",
					"description": "The work-plan content to be created.",
				},
			},
			"required": []string{"work_plan"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			workPlan := stringArg(args, "work_plan")
			loc := workPlanPath(tc)
			if err := tc.Workspace().Write(loc, workPlan); err != nil {
				return nil, fmt.Errorf("create work plan: %w", err)
			}
			console.Banner(bannerTitle(tc, "Create Work-plan"), workPlan, color.FgRed)
			return fmt.Sprintf("Work-plan created (saved in file: %s):\n%s", loc, workPlan), nil
		},
	)
}

// NewUpdateWorkPlanTool overwrites the agent's work plan.
func NewUpdateWorkPlanTool() *FunctionTool {
	return NewFunctionTool(
		"update_work_plan",
		"Update the work-plan.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"updated_work_plan": map[string]any{
					"type":        "string",
					"description": "The updated work-plan content.",
				},
			},
			"required": []string{"updated_work_plan"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			workPlan := stringArg(args, "updated_work_plan")
			loc := workPlanPath(tc)
			if err := tc.Workspace().Write(loc, workPlan); err != nil {
				return nil, fmt.Errorf("update work plan: %w", err)
			}
			console.Banner(bannerTitle(tc, "Update Work-plan"), workPlan, color.FgRed)
			return fmt.Sprintf("Updated work-plan (saved in file: %s):\n%s", loc, workPlan), nil
		},
	)
}

// NewReadMemoryTool reads the agent's memory record.
func NewReadMemoryTool() *FunctionTool {
	return NewFunctionTool(
		"read_memory",
		"Read the memory file to review accumulated execution context.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := memoryPath(tc)
			memory, err := tc.Workspace().Read(loc)
			if err != nil {
				console.Banner(bannerTitle(tc, "Read memory"), "No memory has been created yet.", color.FgYellow)
				return "No memory has been created yet.", nil
			}
			console.Banner(bannerTitle(tc, "Read memory"), memory, color.FgGreen)
			return fmt.Sprintf("Memory (saved in file: %s):\n%s", loc, memory), nil
		},
	)
}

// NewUpdateMemoryTool appends an entry to the agent's memory record.
func NewUpdateMemoryTool() *FunctionTool {
	return NewFunctionTool(
		"update_memory",
		"Append a new entry to the memory file to track execution progress.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"entry": map[string]any{
					"type":        "string",
					"description": "The new entry to append to the memory file.",
				},
			},
			"required": []string{"entry"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			entry := stringArg(args, "entry")
			loc := memoryPath(tc)
			if err := tc.Workspace().Append(loc, entry+"\n"); err != nil {
				return nil, fmt.Errorf("update memory: %w", err)
			}
			console.Banner(bannerTitle(tc, "Update memory"), entry, color.FgRed)
			return fmt.Sprintf("New memory entry appended (saved in file: %s):\n%s", loc, entry), nil
		},
	)
}

// NewReflectTool records a reflection used for decision making.
func NewReflectTool() *FunctionTool {
	return NewFunctionTool(
		"reflect",
		"Perform reflection for decision-making.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reflection": map[string]any{
					"type":        "string",
					"description": "Your detailed reflection content.",
				},
			},
			"required": []string{"reflection"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			reflection := stringArg(args, "reflection")
			loc := reflectionPath(tc)
			if err := tc.Workspace().Append(loc, reflection+"\n"); err != nil {
				return nil, fmt.Errorf("save reflection: %w", err)
			}
			console.Banner(bannerTitle(tc, "Reflect"), reflection, color.FgRed)
			return fmt.Sprintf("Reflection recorded (file: %s):\n%s", loc, reflection), nil
		},
	)
}

// NewListDirTool lists the entries under a workspace location.
func NewListDirTool() *FunctionTool {
	return NewFunctionTool(
		"list_dir",
		"List all files and directories under the target directory.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_dir": map[string]any{
					"type":        "string",
					"description": "The target directory to list.",
				},
			},
			"required": []string{"target_dir"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			targetDir := stringArg(args, "target_dir")
			entries, err := tc.Workspace().List(targetDir)
			if err != nil {
				return fmt.Sprintf("Directory not found: %s", targetDir), nil
			}
			if len(entries) == 0 {
				return "Directory is empty.", nil
			}
			out := ""
			for i, e := range entries {
				if i > 0 {
					out += "\n"
				}
				out += e
			}
			return out, nil
		},
	)
}

// NewReadFileTool reads a file from the workspace.
func NewReadFileTool() *FunctionTool {
	return NewFunctionTool(
		"read_file",
		"Read content from a file.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_full_path": map[string]any{
					"type":        "string",
					"description": "The full path to the file to read.",
				},
			},
			"required": []string{"file_full_path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := stringArg(args, "file_full_path")
			content, err := tc.Workspace().Read(loc)
			if err != nil {
				return fmt.Sprintf("File not found: %s", loc), nil
			}
			return content, nil
		},
	)
}

// NewWriteFileTool writes a file, creating parent directories as needed.
func NewWriteFileTool() *FunctionTool {
	return NewFunctionTool(
		"write_file",
		"Write text content to a file, creating directories if needed. Use this tool if you want to save information.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The text content to write to the file.",
				},
				"file_full_path": map[string]any{
					"type":        "string",
					"description": "The full path to the file to be written.",
				},
			},
			"required": []string{"text", "file_full_path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := stringArg(args, "file_full_path")
			if err := tc.Workspace().Write(loc, stringArg(args, "text")); err != nil {
				return nil, fmt.Errorf("write file: %w", err)
			}
			return fmt.Sprintf("File written successfully: %s", loc), nil
		},
	)
}

// NewAppendToFileTool appends to a file, creating parent directories as
// needed.
func NewAppendToFileTool() *FunctionTool {
	return NewFunctionTool(
		"append_to_file",
		"Append text content to a file, creating directories if needed. Use this tool if you want to append information.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The text content to append to the file.",
				},
				"file_full_path": map[string]any{
					"type":        "string",
					"description": "The full path to the file to append to.",
				},
			},
			"required": []string{"text", "file_full_path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := stringArg(args, "file_full_path")
			if err := tc.Workspace().Append(loc, stringArg(args, "text")); err != nil {
				return nil, fmt.Errorf("append to file: %w", err)
			}
			return fmt.Sprintf("Content appended successfully to: %s", loc), nil
		},
	)
}

// NewFileExistsTool reports whether a file exists in the workspace.
func NewFileExistsTool() *FunctionTool {
	return NewFunctionTool(
		"file_exists",
		"Check if a file exists at the given path.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_full_path": map[string]any{
					"type":        "string",
					"description": "The full path to the file to check.",
				},
			},
			"required": []string{"file_full_path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc := stringArg(args, "file_full_path")
			if tc.Workspace().Exists(loc) {
				return fmt.Sprintf("File exists: %s", loc), nil
			}
			return fmt.Sprintf("File does not exist: %s", loc), nil
		},
	)
}

const datetimeLayout = "2006-01-02 15:04:05"

// NewCurrentDatetimeUTCTool reports the current UTC time.
func NewCurrentDatetimeUTCTool() *FunctionTool {
	return NewFunctionTool(
		"get_current_datetime_in_utc",
		"Get current datetime in UTC, it is NOW.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return time.Now().UTC().Format(datetimeLayout), nil
		},
	)
}

// NewCurrentDatetimeLocalTool reports the current local time.
func NewCurrentDatetimeLocalTool() *FunctionTool {
	return NewFunctionTool(
		"get_current_datetime_in_local",
		"Get current datetime in local timezone, it is NOW.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return time.Now().Format(datetimeLayout), nil
		},
	)
}

// Builtins returns the set of tools every agent is equipped with.
func Builtins() []Tool {
	return []Tool{
		NewCreateWorkPlanTool(),
		NewUpdateWorkPlanTool(),
		NewReadWorkPlanTool(),
		NewUpdateMemoryTool(),
		NewReadMemoryTool(),
		NewReflectTool(),
		NewListDirTool(),
		NewReadFileTool(),
		NewWriteFileTool(),
		NewAppendToFileTool(),
		NewFileExistsTool(),
		NewCurrentDatetimeUTCTool(),
		NewCurrentDatetimeLocalTool(),
	}
}
