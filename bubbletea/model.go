package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/markdown"
)

var _ tea.Model = Model{}

const panelHeight = 6 // four content lines plus border

// Model is the Bubble Tea model for the relay TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	controller Controller
	store      *relay.Store
	theme      relay.Theme
	styles     Styles

	state  *relay.State
	states chan *relay.State

	ready  bool
	width  int
	height int
}

// New creates a TUI Model reading snapshots from store and driving
// turns through ctrl. It subscribes to the store; construct it before
// the first dispatch.
func New(ctrl Controller, store *relay.Store, theme relay.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	states := make(chan *relay.State, 256)
	store.Subscribe(func(s *relay.State) {
		// Drop the oldest snapshot rather than block the dispatcher.
		for {
			select {
			case states <- s:
				return
			default:
				select {
				case <-states:
				default:
				}
			}
		}
	})

	return Model{
		Input:      ti,
		controller: ctrl,
		store:      store,
		theme:      theme,
		styles:     NewStyles(theme),
		state:      store.State(),
		states:     states,
	}
}

// State returns the model's current state snapshot.
func (m Model) State() *relay.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForState(m.states))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m = m.applyState(msg.State)
		return m, listenForState(m.states)
	}

	// Pass remaining messages to sub-components. The viewport always
	// receives them for scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.state.Streaming {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	if m.state.Open {
		b.WriteString(m.renderPanel())
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.state.Streaming {
			m.controller.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.state.Streaming {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.controller.Send(context.Background(), text)
		return m, nil

	case tea.KeyTab:
		m.store.Dispatch(relay.TogglePanel{})
		return m, nil

	case tea.KeyCtrlL:
		m.controller.Clear()
		return m, nil
	}

	// When idle, pass keys to both input (for typing) and viewport
	// (for scrolling). Only non-character keys reach the viewport so
	// letters like 'j'/'k' stay typable.
	if !m.state.Streaming {
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) applyState(s *relay.State) Model {
	panelToggled := m.state.Open != s.Open
	wasStreaming := m.state.Streaming
	m.state = s

	if panelToggled {
		m = m.layout()
	}
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	switch {
	case s.Streaming && !wasStreaming:
		m.Input.Blur()
	case !s.Streaming && wasStreaming:
		m.Input.Focus()
	}
	return m
}

// layout recomputes the viewport size from the window and panel state.
func (m Model) layout() Model {
	if m.width == 0 {
		return m
	}
	inputH := 1
	statusH := 1
	borderH := 2 // newlines between sections
	vpHeight := m.height - inputH - statusH - borderH
	if m.state.Open {
		vpHeight -= panelHeight + 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = m.width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Width = m.width
	return m
}

func (m Model) renderContent() string {
	var blocks []string
	for _, msg := range m.state.Messages {
		switch msg.Role {
		case relay.RoleUser:
			content := m.styles.UserMsg.Render("> ") + msg.Content
			blocks = append(blocks, lipgloss.NewStyle().Width(m.Viewport.Width).Render(content))
		case relay.RoleAssistant:
			if block := m.renderAssistant(msg); block != "" {
				blocks = append(blocks, block)
			}
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderAssistant(msg relay.Message) string {
	var parts []string
	for _, call := range msg.ToolCalls {
		parts = append(parts, m.renderToolCall(call))
	}
	if msg.Content != "" {
		parts = append(parts, markdown.Render(msg.Content, m.Viewport.Width, m.theme))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderToolCall(call relay.ToolCall) string {
	if call.Status == relay.ToolCallRunning {
		return m.styles.ToolCall.Render("⚙ "+call.Name) + m.styles.Muted.Render(" running...")
	}
	line := m.styles.Success.Render("✓ ") + m.styles.ToolCall.Render(call.Name)
	result := call.Result
	if i := strings.IndexByte(result, '\n'); i >= 0 {
		result = result[:i]
	}
	if result != "" {
		avail := m.Viewport.Width - runewidth.StringWidth(call.Name) - 4
		if avail > 0 {
			line += m.styles.Muted.Render(" " + runewidth.Truncate(result, avail, "…"))
		}
	}
	return line
}

func (m Model) renderPanel() string {
	s := m.state
	var tokens int
	for _, msg := range s.Messages {
		tokens += msg.TokensUsed
	}
	sessionID := s.SessionID
	if sessionID == "" {
		sessionID = "(none)"
	}
	rateLimit := "-"
	if s.RateLimit != nil {
		rateLimit = fmt.Sprintf("%d/%d", s.RateLimit.Usage, s.RateLimit.Limit)
	}
	content := strings.Join([]string{
		m.styles.Accent.Render("Session ") + sessionID,
		fmt.Sprintf("Messages %d", len(s.Messages)),
		fmt.Sprintf("Tokens   %d", tokens),
		"Limit    " + rateLimit,
	}, "\n")
	return m.styles.PanelBorder.Width(m.width - 2).Render(content)
}

func (m Model) statusLine() string {
	if m.state.Err != "" {
		return m.styles.Error.Render("Error: " + m.state.Err)
	}
	if m.state.Streaming {
		return m.styles.Muted.Render("Generating... (Ctrl+C to cancel)")
	}
	return m.styles.Muted.Render("Enter to send, Tab for details, Ctrl+L to clear, Ctrl+C to quit")
}

// listenForState waits for the next snapshot from the store.
func listenForState(ch <-chan *relay.State) tea.Cmd {
	return func() tea.Msg {
		return StateMsg{State: <-ch}
	}
}
