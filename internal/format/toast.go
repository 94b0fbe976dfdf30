package format

import (
	"time"

	"github.com/Veraticus/expense-queue/internal/common"
)

// Level is the severity of a toast.
type Level int

// Toast levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// DefaultToastTTL is how long a toast stays on screen.
const DefaultToastTTL = 4 * time.Second

// Toast is a transient status message.
type Toast struct {
	Expires time.Time
	Message string
	Level   Level
}

// NewToast creates a toast shown from now for ttl.
func NewToast(level Level, message string, now time.Time, ttl time.Duration) Toast {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return Toast{Level: level, Message: Sanitize(message), Expires: now.Add(ttl)}
}

// ErrorToast describes err for the status line. A cancelled prompt is
// reported as information, not failure.
func ErrorToast(err error, now time.Time) Toast {
	if common.IsCancelled(err) {
		return NewToast(LevelInfo, "Cancelled", now, DefaultToastTTL)
	}
	return NewToast(LevelError, common.Describe(err), now, 2*DefaultToastTTL)
}

// Active reports whether the toast should still be shown at now.
func (t Toast) Active(now time.Time) bool {
	return t.Message != "" && now.Before(t.Expires)
}
