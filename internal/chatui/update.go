package chatui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if !m.ready {
			m.ready = true
			m.refreshFeed(true)
		}
		return m, nil

	case feedChangedMsg:
		m.refreshFeed(true)
		return m, nil

	case sendFailedMsg:
		m.input.SetValue(restoreDraft(msg.failure.Draft, msg.failure.ReplyTo))
		m.input.CursorEnd()
		m.status = fmt.Sprintf("send failed: %v", msg.failure.Err)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		m.submit()
		return m, nil

	case "tab":
		if len(m.suggestions) > 0 {
			m.acceptSuggestion()
			return m, nil
		}

	case "up":
		if len(m.suggestions) > 0 {
			if m.suggestIndex > 0 {
				m.suggestIndex--
			}
			return m, nil
		}

	case "down":
		if len(m.suggestions) > 0 {
			if m.suggestIndex < len(m.suggestions)-1 {
				m.suggestIndex++
			}
			return m, nil
		}

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.status = ""
	m.refreshSuggestions()
	m.resize()
	return m, cmd
}

// submit resolves the reply reference and hands the draft to the
// session. The input clears immediately; a failed send restores it via
// sendFailedMsg.
func (m *Model) submit() {
	value := strings.TrimRight(m.input.Value(), " \t\n")
	if strings.TrimSpace(value) == "" {
		return
	}

	resolution := ResolveReplyReference(m.session, value)
	switch resolution.Kind {
	case ReplyAmbiguous:
		m.status = fmt.Sprintf("#%s matches %d messages, type more of the id", resolution.Prefix, len(resolution.Matches))
		return
	case ReplyResolved:
		if strings.TrimSpace(resolution.Body) == "" {
			m.status = "reply needs a message body"
			return
		}
	}

	var replyTo *string
	body := value
	if resolution.Kind == ReplyResolved {
		body = resolution.Body
		replyTo = &resolution.ReplyTo
	}

	if err := m.session.Send(body, replyTo); err != nil {
		m.status = fmt.Sprintf("send failed: %v", err)
		return
	}
	m.input.Reset()
	m.clearSuggestions()
	m.status = ""
	m.resize()
}

// refreshFeed re-renders the scrollback and pins to the bottom.
func (m *Model) refreshFeed(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderFeed())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.input.SetWidth(m.width)
	inputHeight := m.input.Height()
	if inputHeight < 1 {
		inputHeight = 1
	}
	// viewport + status line + suggestions + input
	chrome := 1 + inputHeight
	if len(m.suggestions) > 0 {
		chrome++
	}
	vpHeight := m.height - chrome
	if vpHeight < 1 {
		vpHeight = 1
	}
	if m.viewport.Width == 0 && m.viewport.Height == 0 {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.refreshFeed(false)
}

func restoreDraft(draft string, replyTo *string) string {
	if replyTo == nil {
		return draft
	}
	return fmt.Sprintf("#%s %s", *replyTo, draft)
}
