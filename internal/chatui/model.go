// Package chatui renders an open conversation as a terminal UI: the
// scrollback viewport, the compose input with mention suggestions, and
// the status line for send failures and reply references.
package chatui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenroom-app/greenroom/internal/chat"
	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

// Config carries what the model needs beyond the session itself.
type Config struct {
	ConversationID string
	SelfID         string
}

type feedChangedMsg struct{}

type sendFailedMsg struct {
	failure types.SendFailure
}

// Model is the bubbletea model for one open conversation.
type Model struct {
	session *chat.Session
	cfg     Config

	input    textarea.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	status string

	suggestions  []core.MentionSuggestion
	suggestIndex int
}

func newModel(session *chat.Session, cfg Config) *Model {
	return &Model{
		session: session,
		cfg:     cfg,
		input:   newInput(),
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}
