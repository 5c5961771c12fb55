package agent

import (
	"fmt"
	"path"
	"strings"
)

// systemInstruction is the fixed system prompt shared by every agent.
const systemInstruction = "You are an autonomous AI agent."

// subagentHeadnote is prepended to a subagent's task so it knows where its
// report belongs and to verify the save before stopping.
const subagentHeadnote = `%s
**ALWAYS** when you have completed, please save the report to file (if the user **does not specify a storage mechanism**, always use this): %s
**Reflect** on yourself to check if the report file exists. If it does not, redo the save operation to save the report to the file. If the file exists, stop working.`

// workInstructions drives the plan / act / reflect cycle every agent follows.
const workInstructions = `Complete task based on <instruction>.

<instruction>
- **Always** At the very beginning, use create_work_plan to create a work-plan that outlines each step required to complete the task.
- **Always** Execute the steps in the work-plan **STEP-BY-STEP aka. ONE-BY-ONE**.
- **Always** use update_memory to record your actions after calling any tool or receiving response. **WARNING**: This does not include work-plan (step status) update actions, as work-plan has its own separate isolated storage mechanism.
- After completing a step of the work-plan, **always** use update_work_plan to update the status of that step in work-plan.
- **Always** use reflect to perform reflection for decision-making, after updating a step status in work-plan. When reflecting, always include:
    1. What you have done **in detail**.
    2. What results you have obtained **in detail**.
    3. What you will do next **in detail**.
    4. Shall I stop working or continue to work **regarding the status of the steps in the work-plan**?
- **Always** use reflect to perform reflection for decision-making, after calling a tool. When reflecting, always include:
    1. Understand the tool call result.
    2. What shall I do next **regarding the status of the steps in the work-plan**?
    3. Shall I stop working or continue to work **regarding the status of the steps in the work-plan**?
- **IMPORTANT**: **Never** stop working before all steps in the work-plan are completed with ✅.
</instruction>

<execute-step-rule>
- The work-plan shall be created only once if it currently does not exist and shall be operated according to the following protocol:
- The work-plan should be in a classic checklist format:
    - For completed items: [✅] followed by the task description
    - For incomplete items: [🟡] followed by the task description
    - For in-progress items: [🔄] followed by the task description
    - For failed items: [❌] followed by the task description
</execute-step-rule>`

// storageInstruction tells the agent where its records live.
const storageInstruction = `We have the following default storage mechanisms (if the user **does not specify a storage mechanism**, always use those default ones):
<storage-instruction>
Work-plan storage: %s
Memory storage: %s
Reflection storage: %s
Are you a subagent? %t,
- if **yes (true)**, you have storage to save your work result: %s
- if **no (false)**, the work-result storage could be specified by the user based on the task description.
</storage-instruction>`

// subagentsFootnote explains the two transfer patterns to agents that have
// subagents.
const subagentsFootnote = `You have the following subagents that can help you:
%s

<transfer-to-subagent-rule>
You have two transfer patterns to choose from:

1. **ONE-TO-ONE** (transfer_to_subagent): Transfer a task to a single sub-agent. Pass the sub-agent's name as a string. Use this when only one sub-agent is needed for the task.
2. **ONE-TO-MANY** (transfer_to_subagents): Transfer a task to multiple sub-agents in parallel. Pass a list of sub-agent names. Use this when multiple sub-agents can work on the same task or different aspects of the task concurrently. Only sub-agents that support parallel fan-out can be used with this pattern.

**Always** use reflect to perform reflection for decision-making, before transferring. When reflecting, always include:
1. Do I need one sub-agent or multiple sub-agents for this task?
2. If multiple, can they work in parallel on the same task, or do they depend on each other's results?
   - If they can work in parallel, use transfer_to_subagents (ONE-TO-MANY).
   - If they depend on each other, use transfer_to_subagent (ONE-TO-ONE) sequentially.
3. Why shall I transfer the task to certain sub-agent(s)?
4. Is the task description clear and complete? If not, update the task description before transferring.

**Always**: Wait until all sub-agents have completed their tasks before proceeding next step.
**Always**: When transferring, introduce yourself clearly: "I am [xxxxxx]. My task or role is [yyyyy], now I need [specific request]..."
</transfer-to-subagent-rule>`

// buildPrompt assembles the full task prompt: optional subagent headnote, the
// task itself, the work instructions, the storage instruction and, when the
// agent has subagents, the transfer footnote.
func (a *Agent) buildPrompt(task string) string {
	var parts []string

	if a.subagent {
		parts = append(parts, fmt.Sprintf(subagentHeadnote,
			a.Description(),
			path.Join(a.outputLocation, "result.md"),
		))
	}

	parts = append(parts, strings.TrimSpace(task))

	work := workInstructions
	if a.instruction != "" {
		work = work + "\n\n" + a.instruction
	}
	parts = append(parts, work)

	parts = append(parts, fmt.Sprintf(storageInstruction,
		path.Join(a.outputLocation, "work_plan.md"),
		path.Join(a.outputLocation, "memory.md"),
		path.Join(a.outputLocation, "reflection.md"),
		a.subagent,
		path.Join(a.outputLocation, "result.md"),
	))

	a.subMu.RLock()
	if len(a.subagentOrder) > 0 {
		var listing strings.Builder
		for _, name := range a.subagentOrder {
			fmt.Fprintf(&listing, "- %s: %s\n", name, a.subagents[name].Description())
		}
		parts = append(parts, fmt.Sprintf(subagentsFootnote, strings.TrimRight(listing.String(), "\n")))
	}
	a.subMu.RUnlock()

	return strings.Join(parts, "\n\n")
}
