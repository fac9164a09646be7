package main

import (
	"context"
	"fmt"
	"strings"

	"grace/cmd/grace/ui"
	"grace/internal/command"
	"grace/internal/hub"
	"grace/internal/logging"
	"grace/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const chatTab = "chat"

// Messages flowing through the bubbletea loop.
type (
	// engineWakeMsg means the engine log grew; re-read from our offset.
	engineWakeMsg struct{}

	// workspaceMsg asks the shell to open a workspace tab.
	workspaceMsg struct {
		kind string
	}

	// traceMsg carries a trace id to surface in the footer.
	traceMsg struct {
		id string
	}

	// commandDoneMsg signals an engine-side command finished.
	commandDoneMsg struct{}

	// chatDoneMsg signals a chat round trip finished.
	chatDoneMsg struct{}
)

// dashboardModel is the bubbletea model for the interactive dashboard. The
// engine owns all synchronization state; the model only renders the log and
// routes input.
type dashboardModel struct {
	engine *hub.Engine
	styles ui.Styles

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool
	busy   bool

	// logOffset is the first log index still visible; /clear advances it.
	logOffset int
	events    []types.ConversationEvent

	tabs      []string
	activeTab int
	traceID   string

	userID  string
	backend string
}

func newDashboardModel(engine *hub.Engine, styles ui.Styles, userID, backend string) dashboardModel {
	input := textinput.New()
	input.Placeholder = "Message Grace, or /help for commands..."
	input.Focus()
	input.CharLimit = 4096

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logging.Boot("glamour renderer unavailable, using plain text: %v", err)
	}

	return dashboardModel{
		engine:   engine,
		styles:   styles,
		input:    input,
		spin:     spin,
		renderer: renderer,
		tabs:     []string{chatTab},
		userID:   userID,
		backend:  backend,
	}
}

// waitForWake blocks on the engine's coalescing notify channel.
func waitForWake(engine *hub.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.Notify()
		return engineWakeMsg{}
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForWake(m.engine))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			if len(m.tabs) > 1 {
				m.activeTab = (m.activeTab + 1) % len(m.tabs)
				m.refreshViewport()
			}
			return m, nil
		case tea.KeyCtrlT:
			m.engine.ShowTrace(m.engine.LatestTraceID())
			return m, nil
		case tea.KeyEnter:
			if cmd := m.handleSubmit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3 // title bar + tab bar + divider
		footerHeight := 1
		inputHeight := 3
		vpHeight := msg.Height - headerHeight - footerHeight - inputHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 6
		m.refreshViewport()

	case engineWakeMsg:
		m.refreshEvents()
		cmds = append(cmds, waitForWake(m.engine))

	case commandDoneMsg:
		m.refreshEvents()

	case chatDoneMsg:
		m.busy = false
		m.refreshEvents()

	case workspaceMsg:
		m.openTab(msg.kind)

	case traceMsg:
		m.traceID = msg.id

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSubmit routes the input line: slash commands through the interpreter,
// everything else to chat. Returns the async command to run, if any.
func (m *dashboardModel) handleSubmit() tea.Cmd {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return nil
	}
	m.input.Reset()

	if res := command.Interpret(raw); res != nil {
		switch res.Action {
		case command.ActionQuit:
			return tea.Quit
		case command.ActionClear:
			m.logOffset = m.engine.Log().Len()
			m.events = nil
			m.refreshViewport()
			return nil
		}
		engine := m.engine
		return func() tea.Msg {
			engine.ExecuteCommand(context.Background(), res)
			return commandDoneMsg{}
		}
	}

	m.busy = true
	engine := m.engine
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		engine.SendChat(context.Background(), raw)
		return chatDoneMsg{}
	})
}

// openTab adds a workspace tab if absent and focuses it.
func (m *dashboardModel) openTab(kind string) {
	for i, t := range m.tabs {
		if t == kind {
			m.activeTab = i
			m.refreshViewport()
			return
		}
	}
	m.tabs = append(m.tabs, kind)
	m.activeTab = len(m.tabs) - 1
	m.refreshViewport()
}

// refreshEvents re-reads the log from our offset and re-renders.
func (m *dashboardModel) refreshEvents() {
	m.events = m.engine.Log().Events(m.logOffset)
	m.refreshViewport()
}

func (m *dashboardModel) refreshViewport() {
	if !m.ready {
		return
	}
	if m.tabs[m.activeTab] == chatTab {
		m.viewport.SetContent(m.renderHistory())
	} else {
		m.viewport.SetContent(m.renderWorkspace(m.tabs[m.activeTab]))
	}
	m.viewport.GotoBottom()
}

// renderMarkdown runs glamour when available, falling back to plain text.
func (m *dashboardModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// renderHistory builds the chat transcript for the viewport.
func (m *dashboardModel) renderHistory() string {
	if len(m.events) == 0 {
		return m.styles.Muted.Render("\n  Grace is watching your agents. New insights, missions, and\n  approvals will appear here. Type /help for commands.\n")
	}

	var b strings.Builder
	for _, ev := range m.events {
		ts := m.styles.Timestamp.Render(ev.Timestamp.Format("15:04:05"))

		switch ev.Role {
		case types.RoleUser:
			b.WriteString(fmt.Sprintf("%s %s\n", m.styles.UserLabel.Render("You"), ts))
			b.WriteString("  " + ev.Content + "\n\n")
		case types.RoleAssistant:
			b.WriteString(fmt.Sprintf("%s %s\n", m.styles.GraceLabel.Render("✨ Grace"), ts))
			b.WriteString(m.renderMarkdown(ev.Content) + "\n\n")
		case types.RoleError:
			b.WriteString(fmt.Sprintf("%s %s\n", m.styles.Error.Render("Error"), ts))
			b.WriteString("  " + m.styles.Error.Render(ev.Content) + "\n\n")
		default:
			b.WriteString(fmt.Sprintf("%s %s\n", m.styles.SystemLabel.Render("Grace"), ts))
			b.WriteString(m.renderMarkdown(ev.Content) + "\n\n")
		}

		if ev.TraceID != "" {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  trace %s\n", ev.TraceID)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m dashboardModel) renderTabBar() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, m.styles.TabActive.Render(tab))
		} else {
			parts = append(parts, m.styles.TabInactive.Render(tab))
		}
	}
	return m.styles.TabBar.Render(strings.Join(parts, " "))
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Starting Grace..."
	}

	title := fmt.Sprintf("✨ Grace · %s · %s", m.engine.SessionID(), m.backend)
	header := m.styles.Header.Width(m.width).Render(title)

	inputView := m.input.View()
	if m.busy {
		inputView = m.spin.View() + " thinking..."
	}
	inputArea := m.styles.InputArea.Width(m.width - 2).Render(inputView)

	footerParts := []string{"enter send", "tab switch", "ctrl+t trace", "esc quit"}
	if m.engine.VoiceEnabled() {
		footerParts = append(footerParts, "🔊 voice")
	}
	if m.engine.Recording() {
		footerParts = append(footerParts, "⏺ rec")
	}
	if m.traceID != "" {
		footerParts = append(footerParts, "trace: "+m.traceID)
	}
	footer := m.styles.Footer.Render(strings.Join(footerParts, " · "))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderTabBar(),
		m.styles.RenderDivider(m.width),
		m.viewport.View(),
		inputArea,
		footer,
	)
}

// runDashboard wires the engine to the terminal shell and blocks until the
// user quits. onEngine, when set, receives the engine before it starts so the
// caller can attach hot-reload hooks.
func runDashboard(engineOpts hub.Options, styles ui.Styles, userID, backend string, onEngine func(*hub.Engine)) error {
	var program *tea.Program

	// Engine callbacks run on the poll goroutine; hand them to the
	// bubbletea loop as messages.
	engineOpts.Callbacks = hub.Callbacks{
		OnCreateWorkspace: func(kind string, _ map[string]interface{}) {
			if program != nil {
				program.Send(workspaceMsg{kind: kind})
			}
		},
		OnShowTrace: func(id string) {
			if program != nil {
				program.Send(traceMsg{id: id})
			}
		},
	}

	engine := hub.NewEngine(engineOpts)
	if onEngine != nil {
		onEngine(engine)
	}
	model := newDashboardModel(engine, styles, userID, backend)
	program = tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.Start(ctx)
	defer engine.Stop()

	_, err := program.Run()
	return err
}
