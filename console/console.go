// Package console renders titled, colored text banners for notable runtime
// moments such as task hand-offs and saved reports. Output is cosmetic only;
// nothing in the orchestration core depends on it.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Output is where banners are written. Tests may swap it out.
var Output io.Writer = os.Stdout

const ruleWidth = 72

// Banner prints text under a colored title line framed by horizontal rules.
func Banner(title, text string, attrs ...color.Attribute) {
	c := color.New(attrs...)
	rule := strings.Repeat("─", ruleWidth)
	c.Fprintln(Output, rule)
	c.Fprintf(Output, "⌭ %s\n", title)
	c.Fprintln(Output, rule)
	fmt.Fprintln(Output, strings.TrimRight(text, "\n"))
	c.Fprintln(Output, rule)
}

// Transfer prints the hand-off banner for a delegation from one agent to one
// or more subagents.
func Transfer(from string, to []string, task string) {
	body := fmt.Sprintf("- From Agent: %s\n- To Subagent(s): %s\n- Task:\n%s",
		from, strings.Join(to, ", "), task)
	Banner("Transfer to Subagent", body, color.FgCyan)
}
