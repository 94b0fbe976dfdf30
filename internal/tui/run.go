package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/expense-queue/internal/queue"
)

// Run shows the queue until the user quits or ctx ends. The controller
// must have been created with prompter so that its confirmations are
// answered inside the program.
func Run(ctx context.Context, ctrl *queue.Controller, prompter *Prompter, opts ...Option) error {
	if ctrl == nil {
		return errors.New("queue controller is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore the terminal even when the program dies mid-render.
	// Errors are ignored as this is best-effort cleanup.
	cleanupTerminal := func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	m := NewModel(ctx, ctrl, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(m, programOpts...)
	if prompter != nil {
		prompter.Attach(program)
		defer prompter.Attach(nil)
	}

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
