package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a prompt is abandoned by its context.
var ErrInputCancelled = errors.New("input canceled")

// errInputClosed reports that the input ended before an answer arrived.
var errInputClosed = errors.New("input terminated")

type answer int

const (
	answerInvalid answer = iota
	answerYes
	answerNo
)

// parseAnswer reads a y/N reply. An empty reply declines.
func parseAnswer(line string) answer {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return answerYes
	case "", "n", "no":
		return answerNo
	default:
		return answerInvalid
	}
}

// answerReader scans replies off an input stream. A single goroutine owns
// the scanner so a prompt abandoned by its context never swallows the reply
// meant for the next one.
type answerReader struct {
	input io.Reader
	lines chan string
	err   error
	once  sync.Once
}

func newAnswerReader(input io.Reader) *answerReader {
	return &answerReader{input: input, lines: make(chan string)}
}

func (r *answerReader) scan() {
	scanner := bufio.NewScanner(r.input)
	for scanner.Scan() {
		r.lines <- scanner.Text()
	}
	r.err = scanner.Err()
	close(r.lines)
}

// next waits for the next reply line.
func (r *answerReader) next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if ok {
			return line, nil
		}
		if r.err != nil {
			return "", r.err
		}
		return "", errInputClosed
	}
}
