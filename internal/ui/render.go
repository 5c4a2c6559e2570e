package ui

import (
	"fmt"
	"strings"

	"github.com/petasbytes/search-agent/memory"
)

// renderTranscript draws the conversation, the pending prompt and the trace.
func (m Model) renderTranscript() string {
	turns := m.session.Conversation.All()
	var b strings.Builder

	traceDrawn := false
	for i, t := range turns {
		if i == m.traceAt && m.hasTrace() {
			b.WriteString(m.renderTrace())
			traceDrawn = true
		}
		b.WriteString(m.renderTurn(i, t))
	}
	if m.busy && m.pending != "" && len(turns) < m.traceAt {
		b.WriteString(m.renderTurn(-1, memory.UserTurn(m.pending)))
	}
	if !traceDrawn && m.hasTrace() {
		b.WriteString(m.renderTrace())
	}
	return b.String()
}

func (m Model) renderTurn(i int, t memory.Turn) string {
	if t.Role == memory.RoleUser {
		return userLabelStyle.Render("You") + "\n" + t.Content + "\n\n"
	}
	return assistantLabelStyle.Render("Assistant") + "\n" + m.markdown(i, t.Content) + "\n\n"
}

// markdown renders an assistant turn through glamour, reusing the cached
// output while the turn's content and the renderer width are unchanged.
func (m Model) markdown(i int, content string) string {
	if m.rendered != nil {
		if c, ok := m.rendered[i]; ok && c.content == content {
			return c.body
		}
	}
	body := content
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			body = strings.Trim(out, "\n")
		}
	}
	if m.rendered != nil && i >= 0 {
		m.rendered[i] = renderedTurn{content: content, body: body}
	}
	return body
}

// renderedTurn is the glamour output for one conversation index at the
// current width.
type renderedTurn struct {
	content string
	body    string
}

func (m Model) hasTrace() bool {
	return m.busy || len(m.trace) > 0
}

func (m Model) renderTrace() string {
	steps := 0
	for _, line := range m.trace {
		if strings.HasPrefix(line, "Step ") {
			steps++
		}
	}

	var header string
	switch {
	case m.busy && m.showTrace:
		header = fmt.Sprintf("%s ▾ agent reasoning (step %d) · ctrl+t to collapse", m.spinner.View(), steps)
	case m.busy:
		header = fmt.Sprintf("%s ▸ agent reasoning (step %d) · ctrl+t to expand", m.spinner.View(), steps)
	case m.showTrace:
		header = fmt.Sprintf("▾ agent reasoning (%d steps) · ctrl+t to collapse", steps)
	default:
		header = fmt.Sprintf("▸ agent reasoning (%d steps) · ctrl+t to expand", steps)
	}

	out := traceHeaderStyle.Render(header) + "\n"
	if m.showTrace && len(m.trace) > 0 {
		out += traceBodyStyle.Render(strings.TrimRight(strings.Join(m.trace, "\n"), "\n")) + "\n"
	}
	return out + "\n"
}
