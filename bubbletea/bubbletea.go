// Package bubbletea provides a Bubble Tea TUI for the relay chat client.
// The model is a read-only consumer of state snapshots: every store
// dispatch is delivered over a channel, and all mutations flow back
// through the Controller or the store.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davidmoxey/relay"
)

// Controller drives conversation turns on behalf of the TUI.
// *engine.Engine satisfies it.
type Controller interface {
	Send(ctx context.Context, text string)
	Cancel()
	Clear()
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StateMsg delivers a post-dispatch state snapshot to the model.
type StateMsg struct {
	State *relay.State
}
