package tuitest

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultWait is how long Exec waits for a command before dropping it.
// Cursor blink, spinner and toast timers all take longer, so they never
// fire during a Send.
const DefaultWait = 50 * time.Millisecond

// maxDepth bounds the message chains Send follows.
const maxDepth = 32

// Exec runs cmd and returns the messages it produced within wait.
// Batches are flattened; commands still running at the deadline are
// abandoned.
func Exec(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() {
		done <- cmd()
	}()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(wait):
		return nil
	}

	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, Exec(c, wait)...)
	}
	return out
}

// Send delivers msgs to model one by one, feeding every message the
// resulting commands produce back in until the model goes quiet. It
// reports whether the model asked to quit.
func Send(model tea.Model, msgs ...tea.Msg) (tea.Model, bool) {
	quit := false
	for _, msg := range msgs {
		model, quit = send(model, msg, 0)
		if quit {
			break
		}
	}
	return model, quit
}

func send(model tea.Model, msg tea.Msg, depth int) (tea.Model, bool) {
	if _, ok := msg.(tea.QuitMsg); ok {
		return model, true
	}
	model, cmd := model.Update(msg)
	if depth >= maxDepth {
		return model, false
	}
	for _, next := range Exec(cmd, DefaultWait) {
		var quit bool
		model, quit = send(model, next, depth+1)
		if quit {
			return model, true
		}
	}
	return model, false
}
