package tui

import (
	"time"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
)

// loadedMsg reports the initial (or a full) queue load.
type loadedMsg struct {
	err error
}

// opDoneMsg reports the end of a controller operation run as a command.
type opDoneMsg struct {
	err    error
	result *model.BatchResult
	op     string
	notice string
}

// confirmRequestMsg asks the user a yes/no question on behalf of the controller.
type confirmRequestMsg struct {
	reply   chan<- bool
	message string
}

// toastExpiredMsg clears the status toast once it has run its course.
type toastExpiredMsg struct {
	at time.Time
}

// toastMsg replaces the status toast.
type toastMsg struct {
	toast format.Toast
}
