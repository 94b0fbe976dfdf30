package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Prompter asks y/N questions on a line-oriented terminal. It satisfies
// service.Prompter for commands that run outside the TUI.
type Prompter struct {
	reader *answerReader
	writer io.Writer
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// Nil arguments fall back to stdin and stderr.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stderr
	}
	return &Prompter{
		reader: newAnswerReader(reader),
		writer: writer,
	}
}

// Confirm prints message and waits for an answer. An empty answer declines.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if _, err := fmt.Fprintf(p.writer, "%s", FormatPrompt(message+" [y/N]")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.next(ctx)
		if err != nil {
			return false, err
		}

		switch parseAnswer(line) {
		case answerYes:
			return true, nil
		case answerNo:
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}
