// Package ui holds the terminal chat interface built on bubbletea.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephgoksu/TaskTalk/internal/chat"
	"github.com/josephgoksu/TaskTalk/models"
)

type ChatState int

const (
	StateLoading ChatState = iota
	StateChatting
	StateWaiting
	StateFailed
)

// Layout constants
const (
	DefaultViewportWidth  = 80
	DefaultViewportHeight = 14
	MinViewportHeight     = 6
	MaxMsgWidth           = 70
	taskPaneMax           = 8 // Tasks shown before the pane truncates
)

type ChatModel struct {
	// State
	State ChatState
	Err   error

	// Data
	Msgs  []string // Rendered transcript lines for the viewport
	Tasks []models.Task

	// Components
	Spinner  spinner.Model
	Input    textinput.Model
	Viewport viewport.Model

	// Dependencies
	Ctx     context.Context
	Session *chat.Session

	width int
}

type MsgSessionReady struct {
	Err error
}

type MsgTurnDone struct {
	Reply models.ChatMessage
	Err   error
}

func NewChatModel(ctx context.Context, session *chat.Session) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me to add, complete or edit a task..."
	ti.CharLimit = 0
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary

	vp := viewport.New(DefaultViewportWidth, DefaultViewportHeight)

	return ChatModel{
		State:    StateLoading,
		Ctx:      ctx,
		Session:  session,
		Spinner:  s,
		Input:    ti,
		Viewport: vp,
		Msgs:     []string{StyleSubtle.Render("Loading your tasks...")},
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		m.startSession,
	)
}

// startSession loads the task list before the first turn
func (m ChatModel) startSession() tea.Msg {
	return MsgSessionReady{Err: m.Session.Start(m.Ctx)}
}

// runTurn submits one message to the assistant
func runTurn(ctx context.Context, session *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := session.Send(ctx, text)
		return MsgTurnDone{Reply: reply, Err: err}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.Viewport.Width = msg.Width - 4
		m.Viewport.Height = msg.Height - len(m.Tasks) - 10
		if m.Viewport.Height < MinViewportHeight {
			m.Viewport.Height = MinViewportHeight
		}
		m.Input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEscape {
			return m, tea.Quit
		}

		if m.State == StateWaiting || m.State == StateLoading {
			return m, nil
		}

		if msg.Type == tea.KeyEnter {
			text := strings.TrimSpace(m.Input.Value())
			if text == "" {
				return m, nil
			}
			m.Input.Reset()
			m.State = StateWaiting
			m.addMsg("USER", text)
			cmds = append(cmds, runTurn(m.Ctx, m.Session, text))
			cmds = append(cmds, m.Spinner.Tick)
			return m, tea.Batch(cmds...)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

	case MsgSessionReady:
		if msg.Err != nil {
			m.State = StateFailed
			m.Err = msg.Err
			m.addMsg("WARN", chat.FetchApologyText)
			return m, nil
		}
		m.State = StateChatting
		m.Tasks = m.Session.Tasks()
		m.Msgs = nil
		m.addMsg("ASSISTANT", chat.WelcomeText)

	case MsgTurnDone:
		m.State = StateChatting
		if msg.Err != nil {
			// Busy and not-ready are the only errors Send surfaces; both
			// mean the input should simply be retried.
			m.addMsg("WARN", msg.Err.Error())
			return m, nil
		}
		m.Tasks = m.Session.Tasks()
		m.addMsg("ASSISTANT", msg.Reply.Content)

	case spinner.TickMsg:
		if m.State == StateWaiting || m.State == StateLoading {
			m.Spinner, cmd = m.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) addMsg(msgType, content string) {
	var fullMsg string
	wrapped := StyleText.Width(MaxMsgWidth).Render(content)

	switch msgType {
	case "ASSISTANT":
		fullMsg = StylePrefixAssistant.Render("◈ Assistant") + " " + wrapped
	case "USER":
		fullMsg = StylePrefixUser.Render("› You") + " " + wrapped
	case "WARN":
		fullMsg = StylePrefixWarn.Render("⚠ " + content)
	default:
		fullMsg = wrapped
	}

	m.Msgs = append(m.Msgs, fullMsg)
	m.Viewport.SetContent(strings.Join(m.Msgs, "\n"))
	m.Viewport.GotoBottom()
}

// renderTaskPane shows the current list above the transcript so the user
// can see mutations land as the assistant confirms them.
func (m ChatModel) renderTaskPane() string {
	if len(m.Tasks) == 0 {
		return StyleSubtle.Render("  (no tasks yet)")
	}

	var s strings.Builder
	shown := m.Tasks
	truncated := 0
	if len(shown) > taskPaneMax {
		truncated = len(shown) - taskPaneMax
		shown = shown[:taskPaneMax]
	}
	for _, t := range shown {
		if t.Completed {
			s.WriteString(StyleSuccess.Render("  ✓ ") + StyleSubtle.Render(t.Description) + "\n")
		} else {
			s.WriteString(StyleSubtle.Render("  ○ ") + StyleText.Render(t.Description) + "\n")
		}
	}
	if truncated > 0 {
		s.WriteString(StyleSubtle.Render(fmt.Sprintf("  ... and %d more", truncated)) + "\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func (m ChatModel) View() string {
	var s strings.Builder

	s.WriteString(StyleHeader.Render("◆ TaskTalk"))
	s.WriteString(" " + StyleSubtle.Render("Signed in as "+m.Session.UserID()) + "\n")

	sepWidth := m.Viewport.Width
	if sepWidth < 40 {
		sepWidth = 40
	}
	sep := StyleSubtle.Render(strings.Repeat("─", sepWidth)) + "\n"

	s.WriteString(m.renderTaskPane() + "\n")
	s.WriteString(sep)
	s.WriteString(m.Viewport.View() + "\n")
	s.WriteString(sep)

	switch m.State {
	case StateLoading:
		s.WriteString(m.Spinner.View() + " Loading tasks...")
	case StateWaiting:
		s.WriteString(StyleInputBox.Render(m.Input.View()) + "\n")
		s.WriteString(m.Spinner.View() + StylePrimary.Render(" Thinking..."))
	case StateFailed:
		s.WriteString(StyleError.Render("✗ "+m.Err.Error()) + "\n")
		s.WriteString(StyleSubtle.Render("Press [Esc] or [Ctrl+C] to exit"))
	default:
		s.WriteString(StyleInputBox.Render(m.Input.View()) + "\n")
		s.WriteString(StyleSubtle.Render("[Enter] Send | [Esc] Quit"))
	}

	s.WriteString("\n")
	return s.String()
}
