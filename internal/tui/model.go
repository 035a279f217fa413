// Package tui is an interactive terminal front end for one table: a scrolling
// event log, a seat sidebar and an action prompt.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/table"
)

const (
	logPane   = 0
	inputPane = 1
)

// SnapshotMsg delivers a new table state to the model.
type SnapshotMsg table.Snapshot

// actionDoneMsg reports the outcome of a submitted action.
type actionDoneMsg struct {
	name string
	err  error
}

// Options tune how user input maps to actions.
type Options struct {
	DefaultBuyIn int
	TicketCode   string
	Timeout      time.Duration
}

// Model is the Bubble Tea model for a table.
type Model struct {
	actions Actions
	opts    Options
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	gameLog []string
	snap    table.Snapshot
	pending string

	focusedPane int
	quitting    bool
	width       int
	height      int
	initialized bool
}

// New creates a model that sends actions through actions.
func New(actions Actions, opts Options, logger *log.Logger) *Model {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "fold, call, raise 100, min, pot, allin, sit 3, show, muck, quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		actions:     actions,
		opts:        opts,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: inputPane,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case SnapshotMsg:
		next := table.Snapshot(msg)
		for _, line := range describeChanges(m.snap, next) {
			m.AddLogEntry(line)
		}
		m.snap = next

	case actionDoneMsg:
		m.pending = ""
		if msg.err != nil {
			m.logger.Warn("Action failed", "action", msg.name, "error", msg.err)
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("%s failed: %v", msg.name, msg.err)))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.actionInput.Focus()
			} else {
				m.focusedPane = logPane
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.submit(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == logPane {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == logPane {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == logPane {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == logPane {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit parses input and returns the command that performs it.
func (m *Model) submit(input string) tea.Cmd {
	c, err := parseCommand(input, m.snap, m.opts)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render("Error: " + err.Error()))
		return nil
	}
	if c.quit {
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}
	if c.run == nil {
		return nil
	}
	if m.pending != "" {
		m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Still waiting for %s", m.pending)))
		return nil
	}

	m.pending = c.name
	m.AddLogEntry(InfoStyle.Render("> " + c.name))
	actions, timeout := m.actions, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionDoneMsg{name: c.name, err: c.run(ctx, actions)}
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left, fills the rest)
	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == logPane {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPaneView := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPaneView, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the table header, pots and seats.
func (m *Model) renderSidebarPane() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Table %d ", s.TableID)))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("%s %s  $%d/$%d", s.Limit, s.GameType, s.SmallBlind, s.BigBlind)))
	b.WriteString("\n\n")

	b.WriteString(WarningStyle.Render("Pot: $" + RenderPots(s.Pots)))
	b.WriteString("\n")
	b.WriteString("Board: " + RenderCards(s.Community))
	b.WriteString("\n\n")

	for _, seat := range s.Seats {
		line := fmt.Sprintf("%d %-10s $%d", seat.SeatNo, seat.PlayerName, seat.Money)
		if seat.SeatNo == s.DealerSeat {
			line += " (D)"
		}
		if seat.Bet > 0 {
			line += fmt.Sprintf(" [$%d]", seat.Bet)
		}
		switch {
		case seat.PlayerID == s.CurrentPlayerID && s.CurrentPlayerID != 0:
			line = ActorStyle.Render("> " + line)
		case seat.Folded || seat.Status.IsSitOut():
			line = InfoStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderActionPane shows the local hand, the available actions and the prompt.
func (m *Model) renderActionPane() string {
	s := m.snap
	var b strings.Builder

	if me, ok := s.Seat(s.MyPlayerID); ok && len(me.RawCards) > 0 {
		b.WriteString(HandInfoStyle.Render("Hand: ") + RenderCards(me.RawCards))
		if me.Combination != nil {
			b.WriteString("  " + me.Combination.String())
		}
		b.WriteString("\n")
	}

	switch {
	case m.pending != "":
		b.WriteString(HandInfoStyle.Render("Sending " + m.pending + "..."))
	case s.MyPlayerID != 0 && s.CurrentPlayerID == s.MyPlayerID:
		b.WriteString(m.renderAvailableActions())
	default:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	b.WriteString("\n")

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == logPane {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

// renderAvailableActions lists the buttons the current limits allow.
func (m *Model) renderAvailableActions() string {
	l := m.snap.MyLimits
	actions := []string{ErrorStyle.Render("[fold]")}
	if l.CanCheck {
		actions = append(actions, SuccessStyle.Render("[check]"))
	} else {
		actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", l.Button1Amount)))
	}
	if l.CanRaise {
		actions = append(actions,
			WarningStyle.Render(fmt.Sprintf("[raise $%d-$%d]", l.SliderMin, l.SliderMax)),
			WarningStyle.Render(fmt.Sprintf("[allin $%d]", l.Button3Amount)))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// AddLogEntry appends a line to the event log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}
