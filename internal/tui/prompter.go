package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/expense-queue/internal/service"
)

var errPrompterDetached = errors.New("prompter is not attached to a running program")

// Sender delivers messages to a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// Prompter implements service.Prompter by showing a confirm modal in the
// TUI and waiting for the y/n answer.
type Prompter struct {
	sender Sender
	mu     sync.Mutex
}

// Ensure we implement the interface.
var _ service.Prompter = (*Prompter)(nil)

// NewPrompter creates a prompter; Attach must be called before Confirm.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach connects the prompter to the program that renders its questions.
func (p *Prompter) Attach(sender Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = sender
}

// Confirm asks message and blocks until the user answers or ctx ends.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	p.mu.Lock()
	sender := p.sender
	p.mu.Unlock()
	if sender == nil {
		return false, errPrompterDetached
	}

	reply := make(chan bool, 1)
	sender.Send(confirmRequestMsg{reply: reply, message: message})

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
