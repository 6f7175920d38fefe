package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"webchat-client/internal/view"
)

const (
	ansiReset = "\x1b[0m"
	ansiTime  = "\x1b[36m"
	ansiName  = "\x1b[33m"
	ansiSys   = "\x1b[32m"
	ansiWarn  = "\x1b[35m"
)

// CLIDisplay renders transcript changes as appended lines on a terminal.
// Unlike the TUI it cannot repaint rows in place, so edits, deletions, and
// reaction changes print as follow-up notices.
type CLIDisplay struct {
	mu    sync.Mutex
	out   io.Writer
	color bool

	lastCount int
	bodies    map[string]string
	tallies   map[string]string
}

func NewCLIDisplay(out io.Writer, color bool) *CLIDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &CLIDisplay{
		out:     out,
		color:   color,
		bodies:  make(map[string]string),
		tallies: make(map[string]string),
	}
}

func (c *CLIDisplay) Refresh(rows []view.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if row.ID != "" {
			seen[row.ID] = true
		}
		if i >= c.lastCount {
			fmt.Fprintln(c.out, c.formatRow(row))
			c.remember(row)
			continue
		}
		if row.ID == "" {
			continue
		}
		if prev, ok := c.bodies[row.ID]; ok && prev != row.Body {
			fmt.Fprintln(c.out, c.notice(fmt.Sprintf("%s edited a message: %s", row.Sender, row.Body)))
		}
		if tally := formatReactions(row.Reactions); tally != c.tallies[row.ID] && tally != "" {
			fmt.Fprintln(c.out, c.notice(fmt.Sprintf("reactions on %s's message: %s", row.Sender, tally)))
		}
		c.remember(row)
	}
	for id := range c.bodies {
		if !seen[id] {
			fmt.Fprintln(c.out, c.notice("a message was deleted"))
			delete(c.bodies, id)
			delete(c.tallies, id)
		}
	}
	c.lastCount = len(rows)
}

func (c *CLIDisplay) remember(row view.Row) {
	if row.ID == "" {
		return
	}
	c.bodies[row.ID] = row.Body
	c.tallies[row.ID] = formatReactions(row.Reactions)
}

func (c *CLIDisplay) ShowNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		fmt.Fprintf(c.out, "%s%s%s\n", ansiWarn, text, ansiReset)
		return
	}
	fmt.Fprintln(c.out, text)
}

func (c *CLIDisplay) ShowCooldown(remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if remaining == 0 {
		fmt.Fprintln(c.out, c.notice("cooldown over, you can send again"))
		return
	}
	fmt.Fprintln(c.out, c.notice(fmt.Sprintf("on cooldown, wait %ds", remaining)))
}

func (c *CLIDisplay) formatRow(row view.Row) string {
	if row.System {
		return c.notice(row.Body)
	}
	ts := row.Timestamp
	if ts == "" {
		ts = time.Now().Format("15:04")
	}
	var parts []string
	if row.Image != "" {
		parts = append(parts, fmt.Sprintf("(image: %s)", row.Image))
	}
	if row.HasText {
		parts = append(parts, row.Body)
	}
	content := strings.Join(parts, " ")
	suffix := ""
	if tally := formatReactions(row.Reactions); tally != "" {
		suffix = " " + tally
	}
	marker := ""
	if row.ID != "" {
		marker = fmt.Sprintf(" #%s", row.ID)
	}
	if c.color {
		return fmt.Sprintf("%s[%s]%s %s%s%s%s: %s%s", ansiTime, ts, ansiReset, ansiName, row.Sender, ansiReset, marker, content, suffix)
	}
	return fmt.Sprintf("[%s] %s%s: %s%s", ts, row.Sender, marker, content, suffix)
}

func (c *CLIDisplay) notice(text string) string {
	if c.color {
		return fmt.Sprintf("%s>>> %s%s", ansiSys, text, ansiReset)
	}
	return ">>> " + text
}

func formatReactions(tags []view.ReactionTag) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		mark := ""
		if tag.Active {
			mark = "*"
		}
		parts = append(parts, fmt.Sprintf("%s %d%s", tag.Emoji, tag.Count, mark))
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

// ShouldUseColor decides whether ANSI coloring is safe for CLI output.
func ShouldUseColor(disable bool) bool {
	if disable {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" || os.Getenv("ANSICON") != "" || strings.EqualFold(os.Getenv("ConEmuANSI"), "ON") {
			return true
		}
		return false
	}
	return true
}
