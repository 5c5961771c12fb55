package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XinyueZ/tinyagent/console"
	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/delegation"
	"github.com/XinyueZ/tinyagent/model"
	"github.com/XinyueZ/tinyagent/registry"
	"github.com/XinyueZ/tinyagent/tool"
	"github.com/XinyueZ/tinyagent/workspace"
)

func newProbeTool(seen chan core.AgentInfo) []tool.Tool {
	return []tool.Tool{tool.NewFunctionTool(
		"probe",
		"Report the invoking agent",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			seen <- tc.Agent()
			return "ok", nil
		},
	)}
}

func init() {
	console.Output = io.Discard
}

type testEnv struct {
	reg *registry.Registry
	ws  *workspace.InMemoryStore
	del *delegation.Delegator
}

func newTestEnv() *testEnv {
	reg := registry.New(nil)
	ws := workspace.NewInMemoryStore()
	return &testEnv{
		reg: reg,
		ws:  ws,
		del: delegation.New(reg, ws, nil),
	}
}

func (e *testEnv) config(name string) Config {
	return Config{
		Name:       name,
		Model:      model.NewMockModel("mock"),
		OutputRoot: "out",
		Registry:   e.reg,
		Delegator:  e.del,
		Workspace:  e.ws,
	}
}

func TestNewRegistersAgent(t *testing.T) {
	env := newTestEnv()

	a, err := New(env.config("planner"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID())
	assert.True(t, strings.HasPrefix(a.OutputLocation(), "out/planner-"))

	got, ok := env.reg.GetByName("planner")
	require.True(t, ok)
	assert.Same(t, a, got)

	// Builtins plus the two transfer tools are bound.
	tools := a.Tools()
	assert.Contains(t, tools, "create_work_plan")
	assert.Contains(t, tools, "update_memory")
	assert.Contains(t, tools, "transfer_to_subagent")
	assert.Contains(t, tools, "transfer_to_subagents")
}

func TestNewValidatesConfig(t *testing.T) {
	env := newTestEnv()

	cfg := env.config("")
	_, err := New(cfg)
	assert.ErrorContains(t, err, "name is required")

	cfg = env.config("a")
	cfg.Model = nil
	_, err = New(cfg)
	assert.ErrorContains(t, err, "model is required")

	cfg = env.config("a")
	cfg.OutputRoot = ""
	_, err = New(cfg)
	assert.ErrorContains(t, err, "output root is required")
}

func TestNewRejectsNameCollision(t *testing.T) {
	env := newTestEnv()

	first, err := New(env.config("worker"))
	require.NoError(t, err)

	_, err = New(env.config("worker"))
	require.ErrorIs(t, err, registry.ErrNameCollision)

	// The first registration is untouched.
	got, ok := env.reg.GetByName("worker")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestSubagentValidation(t *testing.T) {
	env := newTestEnv()

	subCfg := env.config("helper")
	subCfg.Subagent = true
	sub, err := New(subCfg)
	require.NoError(t, err)

	notSubCfg := env.config("plain")
	notSub, err := New(notSubCfg)
	require.NoError(t, err)

	cfg := env.config("lead")
	cfg.Subagents = []*Agent{sub, notSub}
	_, err = New(cfg)
	assert.ErrorContains(t, err, "not constructed as a subagent")

	cfg = env.config("lead2")
	cfg.Subagents = []*Agent{sub, sub}
	_, err = New(cfg)
	assert.ErrorContains(t, err, "duplicate subagent name")

	cfg = env.config("lead3")
	cfg.Subagents = []*Agent{sub}
	lead, err := New(cfg)
	require.NoError(t, err)

	got, ok := lead.SubagentByName("helper")
	require.True(t, ok)
	assert.Equal(t, sub.ID(), got.ID())
}

func TestCloseUnregistersSubtree(t *testing.T) {
	env := newTestEnv()

	subCfg := env.config("leaf")
	subCfg.Subagent = true
	leaf, err := New(subCfg)
	require.NoError(t, err)

	midCfg := env.config("mid")
	midCfg.Subagent = true
	midCfg.Subagents = []*Agent{leaf}
	mid, err := New(midCfg)
	require.NoError(t, err)

	rootCfg := env.config("root")
	rootCfg.Subagents = []*Agent{mid}
	root, err := New(rootCfg)
	require.NoError(t, err)

	require.Equal(t, 3, env.reg.Len())

	root.Close()
	assert.Equal(t, 0, env.reg.Len())

	// Names are free again.
	_, err = New(env.config("root"))
	assert.NoError(t, err)
}

func TestInvokeRunsToolLoop(t *testing.T) {
	env := newTestEnv()

	mock := model.NewMockModel("mock")
	mock.Enqueue(&model.Response{
		ToolCalls: []model.ToolCall{{
			ID:        "call-1",
			Name:      "create_work_plan",
			Arguments: json.RawMessage(`{"work_plan":"- [🟡] single step"}`),
		}},
		StopReason: "tool_use",
	})
	mock.Enqueue(&model.Response{Text: "all done", StopReason: "end_turn"})

	cfg := env.config("doer")
	cfg.Model = mock
	a, err := New(cfg)
	require.NoError(t, err)

	out, err := a.Invoke(context.Background(), "do the thing")
	require.NoError(t, err)
	assert.Equal(t, "all done", out)

	// The tool really ran against the agent's private storage.
	plan, err := env.ws.Read(a.OutputLocation() + "/work_plan.md")
	require.NoError(t, err)
	assert.Equal(t, "- [🟡] single step", plan)

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Messages[0].Text, "do the thing")
	assert.NotEmpty(t, reqs[0].Tools)

	// Second round carries the assistant tool call and the enriched result.
	last := reqs[1].Messages
	require.GreaterOrEqual(t, len(last), 3)
	assert.Equal(t, "assistant", last[1].Role)
	require.Len(t, last[2].ToolResults, 1)
	assert.Contains(t, last[2].ToolResults[0].Content, "Work-plan created")
}

func TestInvokeUnknownToolFeedsErrorText(t *testing.T) {
	env := newTestEnv()

	mock := model.NewMockModel("mock")
	mock.Enqueue(&model.Response{
		ToolCalls:  []model.ToolCall{{ID: "c1", Name: "no_such_tool"}},
		StopReason: "tool_use",
	})
	mock.Enqueue(&model.Response{Text: "recovered", StopReason: "end_turn"})

	cfg := env.config("cautious")
	cfg.Model = mock
	a, err := New(cfg)
	require.NoError(t, err)

	out, err := a.Invoke(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Messages[2].ToolResults[0].Content, "Unknown tool")
}

func TestInvokeTurnCap(t *testing.T) {
	env := newTestEnv()

	mock := model.NewMockModel("mock")
	for range 3 {
		mock.Enqueue(&model.Response{
			ToolCalls:  []model.ToolCall{{ID: "c", Name: "read_memory", Arguments: json.RawMessage(`{}`)}},
			StopReason: "tool_use",
		})
	}

	cfg := env.config("loops")
	cfg.Model = mock
	cfg.MaxTurns = 3
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), "task")
	assert.ErrorContains(t, err, "no final response after 3 turns")
}

// blockingModel parks Generate until released, to hold an agent busy.
type blockingModel struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *blockingModel) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	m.once.Do(func() { close(m.started) })
	<-m.release
	return &model.Response{Text: "ok"}, nil
}

func (m *blockingModel) Info() model.Info {
	return model.Info{Name: "blocking", Provider: "test"}
}

func TestInvokeGoroutineExclusive(t *testing.T) {
	env := newTestEnv()

	bm := &blockingModel{started: make(chan struct{}), release: make(chan struct{})}
	cfg := env.config("exclusive")
	cfg.Model = bm
	a, err := New(cfg)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err := a.Invoke(context.Background(), "long task")
		assert.NoError(t, err)
		assert.Equal(t, "ok", out)
	}()

	<-bm.started
	_, err = a.Invoke(context.Background(), "second task")
	var affErr *AffinityError
	require.ErrorAs(t, err, &affErr)
	assert.Equal(t, "exclusive", affErr.Agent)

	close(bm.release)
	wg.Wait()

	// Once idle, another goroutine can invoke the agent again.
	done := make(chan error, 1)
	go func() {
		mock := model.NewMockModel("mock")
		cfg := env.config("later")
		cfg.Model = mock
		b, err := New(cfg)
		if err != nil {
			done <- err
			return
		}
		_, err = b.Invoke(context.Background(), "task")
		done <- err
	}()
	require.NoError(t, <-done)
}

func TestInvokeSequentialAcrossGoroutines(t *testing.T) {
	env := newTestEnv()

	// MockModel's echo fallback answers without tool calls, so each Invoke
	// claims and releases ownership immediately.
	cfg := env.config("handover")
	a, err := New(cfg)
	require.NoError(t, err)

	// Back-to-back invocations from fresh goroutines are sequential, never
	// concurrent; none of them may be rejected as an affinity violation.
	for range 200 {
		done := make(chan error, 1)
		go func() {
			_, err := a.Invoke(context.Background(), "task")
			done <- err
		}()
		require.NoError(t, <-done)
	}
}

func TestAppendSubagentConcurrentWithLookups(t *testing.T) {
	env := newTestEnv()

	parent, err := New(env.config("growing"))
	require.NoError(t, err)

	const n = 50
	subs := make([]*Agent, n)
	for i := range subs {
		cfg := env.config(fmt.Sprintf("branch-%d", i))
		cfg.Subagent = true
		subs[i], err = New(cfg)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for _, sub := range subs {
			assert.NoError(t, parent.AppendSubagent(sub))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			parent.SubagentByName(fmt.Sprintf("branch-%d", i%n))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			parent.Subagents()
		}
	}()
	wg.Wait()

	assert.Len(t, parent.Subagents(), n)
	for i := range subs {
		_, ok := parent.SubagentByName(fmt.Sprintf("branch-%d", i))
		assert.True(t, ok)
	}
}

func TestInvokeDelegationThroughTransferTool(t *testing.T) {
	env := newTestEnv()

	childModel := model.NewMockModel("mock")
	childModel.Enqueue(&model.Response{Text: "child finished", StopReason: "end_turn"})
	childCfg := env.config("researcher")
	childCfg.Model = childModel
	childCfg.Subagent = true
	child, err := New(childCfg)
	require.NoError(t, err)

	parentModel := model.NewMockModel("mock")
	parentModel.Enqueue(&model.Response{
		ToolCalls: []model.ToolCall{{
			ID:        "t1",
			Name:      "transfer_to_subagent",
			Arguments: json.RawMessage(`{"from_agent":"lead","to_subagent":"researcher","task":"dig in"}`),
		}},
		StopReason: "tool_use",
	})
	parentModel.Enqueue(&model.Response{Text: "report ready", StopReason: "end_turn"})

	parentCfg := env.config("lead")
	parentCfg.Model = parentModel
	parentCfg.Subagents = []*Agent{child}
	parent, err := New(parentCfg)
	require.NoError(t, err)

	out, err := parent.Invoke(context.Background(), "produce a report")
	require.NoError(t, err)
	assert.Equal(t, "report ready", out)

	// The child saw the delegated task wrapped in its own prompt.
	childReqs := childModel.Requests()
	require.Len(t, childReqs, 1)
	assert.Contains(t, childReqs[0].Messages[0].Text, "dig in")

	// The parent got the three-tier status back; the child wrote nothing, so
	// it is the placeholder message.
	parentReqs := parentModel.Requests()
	require.Len(t, parentReqs, 2)
	assert.Contains(t, parentReqs[1].Messages[2].ToolResults[0].Content, "ignore")
}

func TestSubagentPromptMentionsResultFile(t *testing.T) {
	env := newTestEnv()

	mock := model.NewMockModel("mock")
	mock.Enqueue(&model.Response{Text: "done", StopReason: "end_turn"})

	cfg := env.config("reporter")
	cfg.Model = mock
	cfg.Subagent = true
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), "write the summary")
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Messages[0].Text
	assert.Contains(t, prompt, a.OutputLocation()+"/result.md")
	assert.Contains(t, prompt, "work_plan.md")
}

func TestActiveAgentVisibleToTools(t *testing.T) {
	env := newTestEnv()

	seen := make(chan core.AgentInfo, 1)
	probe := newProbeTool(seen)

	mock := model.NewMockModel("mock")
	mock.Enqueue(&model.Response{
		ToolCalls:  []model.ToolCall{{ID: "p", Name: "probe", Arguments: json.RawMessage(`{}`)}},
		StopReason: "tool_use",
	})
	mock.Enqueue(&model.Response{Text: "done", StopReason: "end_turn"})

	cfg := env.config("prober")
	cfg.Model = mock
	cfg.Tools = probe
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), "task")
	require.NoError(t, err)

	info := <-seen
	assert.Equal(t, a.ID(), info.ID)
	assert.Equal(t, "prober", info.Name)
}
