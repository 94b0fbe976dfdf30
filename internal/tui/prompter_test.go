package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replySender answers every confirmation request with answer.
type replySender struct {
	messages chan string
	answer   bool
}

func (s replySender) Send(msg tea.Msg) {
	if req, ok := msg.(confirmRequestMsg); ok {
		s.messages <- req.message
		req.reply <- s.answer
	}
}

func TestPrompter_Detached(t *testing.T) {
	p := NewPrompter()

	ok, err := p.Confirm(context.Background(), "Discard 1 item?")

	require.ErrorIs(t, err, errPrompterDetached)
	assert.False(t, ok)
}

func TestPrompter_Answers(t *testing.T) {
	for _, answer := range []bool{true, false} {
		p := NewPrompter()
		sender := replySender{messages: make(chan string, 1), answer: answer}
		p.Attach(sender)

		ok, err := p.Confirm(context.Background(), "Archive 2 items?")

		require.NoError(t, err)
		assert.Equal(t, answer, ok)
		assert.Equal(t, "Archive 2 items?", <-sender.messages)
	}
}

func TestPrompter_ContextCancelled(t *testing.T) {
	p := NewPrompter()
	p.Attach(make(chanSender, 1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := p.Confirm(ctx, "Discard 1 item?")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
}
