package tool

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XinyueZ/tinyagent/console"
	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/workspace"
)

func builtinToolContext(t *testing.T, ws core.Workspace) *core.ToolContext {
	t.Helper()
	info := core.AgentInfo{ID: "id-7", Name: "writer", OutputLocation: "out/writer"}
	return core.NewToolContext(context.Background(), info, core.CaptureCaller(0), "builtin", ws, nil)
}

func silenceConsole(t *testing.T) {
	t.Helper()
	prev := console.Output
	console.Output = io.Discard
	t.Cleanup(func() { console.Output = prev })
}

func TestWorkPlanTools(t *testing.T) {
	silenceConsole(t)
	ws := workspace.NewInMemoryStore()
	tc := builtinToolContext(t, ws)

	read := NewReadWorkPlanTool()
	result, err := read.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, result, "No work-plan")

	create := NewCreateWorkPlanTool()
	result, err = create.Call(tc, map[string]any{"work_plan": "1. draft\n2. review"})
	require.NoError(t, err)
	assert.Contains(t, result, "Work-plan created")

	stored, err := ws.Read("out/writer/work_plan.md")
	require.NoError(t, err)
	assert.Equal(t, "1. draft\n2. review", stored)

	update := NewUpdateWorkPlanTool()
	_, err = update.Call(tc, map[string]any{"updated_work_plan": "1. draft [done]\n2. review"})
	require.NoError(t, err)

	result, err = read.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, result, "1. draft [done]")
}

func TestMemoryTools(t *testing.T) {
	silenceConsole(t)
	ws := workspace.NewInMemoryStore()
	tc := builtinToolContext(t, ws)

	read := NewReadMemoryTool()
	result, err := read.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, result, "No memory")

	update := NewUpdateMemoryTool()
	_, err = update.Call(tc, map[string]any{"entry": "step one done"})
	require.NoError(t, err)
	_, err = update.Call(tc, map[string]any{"entry": "step two done"})
	require.NoError(t, err)

	stored, err := ws.Read("out/writer/memory.md")
	require.NoError(t, err)
	assert.Equal(t, "step one done\nstep two done\n", stored)
}

func TestReflectTool(t *testing.T) {
	silenceConsole(t)
	ws := workspace.NewInMemoryStore()
	tc := builtinToolContext(t, ws)

	reflect := NewReflectTool()
	result, err := reflect.Call(tc, map[string]any{"reflection": "the plan is too broad"})
	require.NoError(t, err)
	assert.Contains(t, result, "Reflection recorded")

	stored, err := ws.Read("out/writer/reflection.md")
	require.NoError(t, err)
	assert.Contains(t, stored, "the plan is too broad")
}

func TestFileTools(t *testing.T) {
	silenceConsole(t)
	ws := workspace.NewInMemoryStore()
	tc := builtinToolContext(t, ws)

	write := NewWriteFileTool()
	_, err := write.Call(tc, map[string]any{"text": "alpha", "file_full_path": "notes/a.md"})
	require.NoError(t, err)

	appendTool := NewAppendToFileTool()
	_, err = appendTool.Call(tc, map[string]any{"text": " beta", "file_full_path": "notes/a.md"})
	require.NoError(t, err)

	read := NewReadFileTool()
	result, err := read.Call(tc, map[string]any{"file_full_path": "notes/a.md"})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta", result)

	result, err = read.Call(tc, map[string]any{"file_full_path": "notes/missing.md"})
	require.NoError(t, err)
	assert.Contains(t, result, "File not found")

	exists := NewFileExistsTool()
	result, err = exists.Call(tc, map[string]any{"file_full_path": "notes/a.md"})
	require.NoError(t, err)
	assert.Contains(t, result, "File exists")

	result, err = exists.Call(tc, map[string]any{"file_full_path": "notes/missing.md"})
	require.NoError(t, err)
	assert.Contains(t, result, "does not exist")

	list := NewListDirTool()
	result, err = list.Call(tc, map[string]any{"target_dir": "notes"})
	require.NoError(t, err)
	assert.Contains(t, result, "a.md")
}

func TestDatetimeTools(t *testing.T) {
	tc := builtinToolContext(t, workspace.NewInMemoryStore())

	utc := NewCurrentDatetimeUTCTool()
	result, err := utc.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, result)

	local := NewCurrentDatetimeLocalTool()
	result, err = local.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, result)
}

func TestBuiltinsAreComplete(t *testing.T) {
	names := make(map[string]bool)
	for _, bt := range Builtins() {
		names[bt.Name()] = true
	}
	for _, want := range []string{
		"create_work_plan", "update_work_plan", "read_work_plan",
		"update_memory", "read_memory", "reflect",
		"list_dir", "read_file", "write_file", "append_to_file", "file_exists",
		"get_current_datetime_in_utc", "get_current_datetime_in_local",
	} {
		assert.True(t, names[want], "missing builtin %s", want)
	}
}
