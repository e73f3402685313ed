package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/sanbao/pkg/stream"
)

// syncWriter serializes writes from concurrent sessions
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// progress prints what changed between consecutive snapshots of one stream
type progress struct {
	w      io.Writer
	styles liveStyles
	label  string

	content   int
	reasoning int
	plan      int
	status    string
	done      bool
}

func newProgress(w io.Writer, label string) *progress {
	return &progress{
		w:      w,
		styles: newLiveStyles(lipgloss.NewRenderer(w)),
		label:  label,
	}
}

func (p *progress) OnSnapshot(snap stream.Snapshot) {
	if p.done {
		return
	}

	var b strings.Builder
	prefix := p.styles.Stream.Render("[" + p.label + "]")

	if snap.LastStatus != nil && *snap.LastStatus != p.status {
		p.status = *snap.LastStatus
		fmt.Fprintf(&b, "%s %s\n", prefix, p.styles.Status.Render(p.status))
	}
	if delta, ok := grow(snap.Reasoning, &p.reasoning); ok {
		fmt.Fprintf(&b, "%s %s\n", prefix, renderLines(p.styles.Reasoning, delta))
	}
	if delta, ok := grow(snap.Plan, &p.plan); ok {
		fmt.Fprintf(&b, "%s %s\n", prefix, renderLines(p.styles.Plan, delta))
	}
	if delta, ok := grow(snap.Content, &p.content); ok {
		fmt.Fprintf(&b, "%s %s\n", prefix, renderLines(p.styles.Content, delta))
	}

	if snap.IsDone {
		p.done = true
		fmt.Fprintf(&b, "%s %s\n", prefix, p.finalLine(snap))
	}

	if b.Len() > 0 {
		_, _ = io.WriteString(p.w, b.String())
	}
}

func (p *progress) finalLine(snap stream.Snapshot) string {
	switch snap.State {
	case stream.StateErrored:
		msg := "errored"
		if snap.Error != nil {
			msg += ": " + *snap.Error
		}
		return p.styles.Errored.Render(msg)
	case stream.StateCancelled:
		return p.styles.Cancelled.Render("cancelled")
	default:
		return p.styles.Completed.Render(fmt.Sprintf("completed (%d events)", snap.Events))
	}
}

// grow returns the part of s past the seen offset and advances it.
// Accumulators only grow, so a shorter s is a stale snapshot.
func grow(s string, seen *int) (string, bool) {
	if len(s) <= *seen {
		return "", false
	}
	delta := s[*seen:]
	*seen = len(s)
	return delta, true
}

// renderLines styles each line on its own; Render pads multi-line blocks
// to a common width.
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}
