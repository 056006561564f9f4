package chatui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenroom-app/greenroom/internal/chat"
	"github.com/greenroom-app/greenroom/internal/types"
)

// Run opens the session, drives the terminal UI until the user quits,
// and tears the session down on the way out.
func Run(session *chat.Session, cfg Config) error {
	model := newModel(session, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())

	session.SetCallbacks(
		func() { program.Send(feedChangedMsg{}) },
		func(failure types.SendFailure) { program.Send(sendFailedMsg{failure: failure}) },
	)

	if err := session.Open(context.Background()); err != nil {
		return err
	}
	defer session.Close()

	_, err := program.Run()
	return err
}
