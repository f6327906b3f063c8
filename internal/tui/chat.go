// Package tui renders the task chat as a terminal program. It is a plain
// view over the chat engine: it subscribes, re-renders snapshots, and
// forwards user input to Send. No reconciliation logic lives here.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewdeck/crewdeck/internal/chat"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// refreshMsg is pushed into the program whenever the engine notifies.
type refreshMsg struct{}

// sendResultMsg carries the outcome of an async Send.
type sendResultMsg struct{ err error }

// ChatModel is the bubbletea model for one task conversation.
type ChatModel struct {
	ctrl      *chat.Controller
	taskID    string
	taskTitle string

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	width    int
	height   int
	ready    bool
	sendErr  error
	quitting bool
}

// NewChatModel creates the model; the caller selects the task and wires
// the subscription (see Run).
func NewChatModel(ctrl *chat.Controller, taskID, taskTitle string) ChatModel {
	input := textinput.New()
	input.Placeholder = "Type a message…"
	input.Focus()
	input.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return ChatModel{
		ctrl:      ctrl,
		taskID:    taskID,
		taskTitle: taskTitle,
		input:     input,
		spin:      spin,
	}
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewHeight := msg.Height - 5
		if viewHeight < 3 {
			viewHeight = 3
		}
		if !m.ready {
			m.view = viewport.New(msg.Width, viewHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = viewHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.sendErr = nil
			ctrl := m.ctrl
			return m, func() tea.Msg {
				return sendResultMsg{err: ctrl.Send(text)}
			}
		}

	case refreshMsg:
		m.refresh()
		return m, nil

	case sendResultMsg:
		m.sendErr = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-renders the transcript into the viewport, pinned to the tail.
func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	m.view.SetContent(renderTranscript(m.ctrl.Snapshot(), m.view.Width))
	m.view.GotoBottom()
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	title := m.taskTitle
	if title == "" {
		title = m.taskID
	}
	header := headerStyle.Render("crewdeck · " + title)

	status := string(m.ctrl.Status())
	switch m.ctrl.Status() {
	case chat.StatusLoading, chat.StatusSending:
		status = m.spin.View() + " " + status
	case chat.StatusError:
		if err := m.ctrl.LastError(); err != nil {
			status = failedStyle.Render(fmt.Sprintf("%s · %v", status, err))
		}
	}
	if m.sendErr != nil {
		status += failedStyle.Render(fmt.Sprintf("  send failed: %v", m.sendErr))
	}

	body := "connecting…"
	if m.ready {
		body = m.view.View()
	}

	return strings.Join([]string{
		header,
		statusStyle.Render(status),
		body,
		"> " + m.input.View(),
		helpStyle.Render("enter send · esc quit"),
	}, "\n")
}

// renderTranscript formats the snapshot for the viewport.
func renderTranscript(msgs []chat.Message, width int) string {
	if len(msgs) == 0 {
		return systemStyle.Render("No messages yet.")
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(m, width))
	}
	return b.String()
}

func renderMessage(m chat.Message, width int) string {
	var label string
	switch m.Role {
	case chat.RoleUser:
		label = userStyle.Render("you")
	case chat.RoleAssistant:
		label = assistantStyle.Render("assistant")
	case chat.RoleSystem:
		label = systemStyle.Render("system")
	case chat.RoleTool:
		label = toolStyle.Render("tool")
	default:
		label = string(m.Role)
	}

	suffix := ""
	if m.Failed {
		suffix = " " + failedStyle.Render("✗ not delivered")
	} else if m.IsTemp() {
		suffix = " " + pendingStyle.Render("…sending")
	}

	body := m.Content
	if width > 8 {
		body = lipgloss.NewStyle().Width(width - 2).Render(body)
	}
	return fmt.Sprintf("%s%s\n%s", label, suffix, body)
}

// Run starts the chat program for a selected task and blocks until the
// user quits.
func Run(ctrl *chat.Controller, taskID, taskTitle string) error {
	model := NewChatModel(ctrl, taskID, taskTitle)
	p := tea.NewProgram(model, tea.WithAltScreen())

	unsub, err := ctrl.Subscribe(func() { p.Send(refreshMsg{}) })
	if err != nil {
		return err
	}
	defer unsub()

	if err := ctrl.Select(taskID); err != nil {
		return err
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
