// Package ui is the terminal presentation layer: a key-entry screen while the
// credential gate is closed, then a chat transcript with a single-line prompt
// and a live "agent reasoning" trace for the submission in flight.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/petasbytes/search-agent/internal/runner"
	"github.com/petasbytes/search-agent/internal/session"
)

const (
	Title       = "Search Engine Using Tools and Agents"
	Placeholder = "What is machine learning?"

	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 6 // title, blank, input, hint and padding
	eventBuffer   = 256
	maxObsRunes   = 300
)

// Submitter runs one prompt against a session. *session.Handler implements it.
type Submitter interface {
	Submit(ctx context.Context, s *session.Session, prompt string, sink runner.EventSink) (*session.Session, session.Reply, error)
}

// Options tune presentation details.
type Options struct {
	// ProviderLabel names the provider on the key-entry screen, e.g. "Groq".
	ProviderLabel string
	// GlamourStyle is a glamour standard style name; empty means "dark".
	GlamourStyle string
}

type screen int

const (
	screenKey screen = iota
	screenChat
)

type Model struct {
	ctx     context.Context
	session *session.Session
	handler Submitter
	opts    Options

	screen    screen
	keyInput  textinput.Model
	chatInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	rendered  map[int]renderedTurn // keyed by conversation index; reset on resize
	width     int
	height    int

	busy      bool
	run       int
	events    chan runner.Event
	pending   string // prompt shown until the store has it
	traceAt   int    // conversation index the trace renders before
	trace     []string
	showTrace bool
	notice    string
}

// New builds the UI around s. The key screen is shown while s has no credential.
func New(ctx context.Context, s *session.Session, h Submitter, opts Options) Model {
	if opts.ProviderLabel == "" {
		opts.ProviderLabel = "Groq"
	}
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}

	key := textinput.New()
	key.Placeholder = "API key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 256

	chat := textinput.New()
	chat.Placeholder = Placeholder
	chat.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		session:   s,
		handler:   h,
		opts:      opts,
		keyInput:  key,
		chatInput: chat,
		viewport:  viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:   sp,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.renderer = newRenderer(opts.GlamourStyle, defaultWidth)
	m.rendered = make(map[int]renderedTurn)
	if s.Credential.Open() {
		m.openChat()
	} else {
		m.openKeyScreen()
	}
	m.refresh()
	return m
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m *Model) openKeyScreen() {
	m.screen = screenKey
	m.keyInput.Reset()
	m.keyInput.Focus()
	m.chatInput.Blur()
}

func (m *Model) openChat() {
	m.screen = screenChat
	m.keyInput.Blur()
	m.keyInput.Reset()
	m.chatInput.Focus()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.keyInput.Width = max(msg.Width-4, 10)
		m.chatInput.Width = max(msg.Width-4, 10)
		if msg.Width != m.width || m.renderer == nil {
			m.renderer = newRenderer(m.opts.GlamourStyle, msg.Width)
			m.rendered = make(map[int]renderedTurn)
		}
		m.width, m.height = msg.Width, msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case agentEventMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.applyEvent(msg.event)
		m.refresh()
		return m, waitForEvent(msg.run, m.events)

	case eventsClosedMsg:
		return m, nil

	case submitDoneMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.busy = false
		m.pending = ""
		m.notice = ""
		if msg.err != nil {
			// Only reachable if the gate closed mid-flight or the prompt was blank.
			m.notice = msg.err.Error()
		}
		m.chatInput.Focus()
		m.refresh()
		return m, textinput.Blink

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.screen == screenKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else {
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == screenKey {
		switch msg.Type {
		case tea.KeyEnter:
			m.session.Credential.Set(m.keyInput.Value())
			if !m.session.Credential.Open() {
				m.notice = "Please enter an API key to start chatting."
				return m, nil
			}
			m.notice = ""
			m.openChat()
			m.refresh()
			return m, textinput.Blink
		case tea.KeyEsc:
			if m.session.Credential.Open() {
				m.openChat()
				return m, textinput.Blink
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+t":
		m.showTrace = !m.showTrace
		m.refresh()
		return m, nil
	case "ctrl+k":
		if m.busy {
			return m, nil
		}
		m.openKeyScreen()
		return m, textinput.Blink
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		return m.submit()
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// submit starts one run. Ignored while another is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.chatInput.Value())
	if m.busy || prompt == "" {
		return m, nil
	}
	if !m.session.Credential.Open() {
		m.openKeyScreen()
		return m, nil
	}

	m.run++
	m.busy = true
	m.pending = prompt
	m.traceAt = m.session.Conversation.Len() + 1
	m.trace = nil
	m.notice = ""
	m.events = make(chan runner.Event, eventBuffer)
	m.chatInput.Reset()
	m.chatInput.Blur()
	m.refresh()

	return m, tea.Batch(
		submitCmd(m.ctx, m.handler, m.session, prompt, m.run, m.events),
		waitForEvent(m.run, m.events),
		m.spinner.Tick,
	)
}

// applyEvent folds one runner event into the reasoning trace.
func (m *Model) applyEvent(e runner.Event) {
	switch e.Kind {
	case runner.EventStepStart:
		m.trace = append(m.trace, fmt.Sprintf("Step %d", e.Step), "")
	case runner.EventToken:
		if len(m.trace) == 0 {
			m.trace = append(m.trace, "")
		}
		m.trace[len(m.trace)-1] += e.Text
	case runner.EventAction:
		m.trace = append(m.trace, fmt.Sprintf("→ %s(%q)", e.Tool, e.Input))
	case runner.EventObservation:
		m.trace = append(m.trace, "Observation: "+clamp(e.Text, maxObsRunes))
	case runner.EventParseError:
		m.trace = append(m.trace, "⚠ "+e.Text)
	case runner.EventFinalAnswer:
		m.trace = append(m.trace, "✓ final answer")
	case runner.EventStopped:
		m.trace = append(m.trace, "■ "+e.Text)
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n\n")

	if m.screen == screenKey {
		b.WriteString(sectionStyle.Render("Settings"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Enter your %s API key:\n", m.opts.ProviderLabel)
		b.WriteString(m.keyInput.View())
		b.WriteString("\n\n")
		if m.notice != "" {
			b.WriteString(errorStyle.Render(m.notice))
			b.WriteString("\n")
		}
		hint := "enter save • ctrl+c quit"
		if m.session.Credential.Open() {
			hint = "enter save • esc back to chat • ctrl+c quit"
		}
		b.WriteString(hintStyle.Render(hint))
		return b.String()
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.chatInput.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter send • ctrl+t reasoning • ctrl+k API key • pgup/pgdown scroll • ctrl+c quit"))
	return b.String()
}

func clamp(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
