package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/queue"
)

// loadQueue fetches categories and the queue.
func (m Model) loadQueue() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if err := ctrl.LoadCategories(ctx); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: ctrl.LoadAll(ctx)}
	}
}

// batchOp runs a controller action that reports a BatchResult.
func (m Model) batchOp(op string, fn func(context.Context) (*model.BatchResult, error)) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		result, err := fn(ctx)
		done := opDoneMsg{op: op, result: result, err: err}
		if err == nil {
			done.notice = ctrl.Message()
		}
		return done
	}
}

// op runs a controller action whose outcome is left in the controller message.
func (m Model) op(name string, fn func(context.Context) error) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		err := fn(ctx)
		done := opDoneMsg{op: name, err: err}
		if err == nil {
			done.notice = ctrl.Message()
		}
		return done
	}
}

func (m Model) saveMerge(form queue.MergeForm) tea.Cmd {
	return m.op("merge", func(ctx context.Context) error {
		_, err := m.ctrl.SaveMerge(ctx, form)
		return err
	})
}

func (m Model) saveFocused() tea.Cmd {
	return m.op("save", func(ctx context.Context) error {
		_, err := m.ctrl.SaveFocused(ctx)
		return err
	})
}

func (m Model) applyRules() tea.Cmd {
	return m.op("rules", func(ctx context.Context) error {
		_, err := m.ctrl.ApplyRules(ctx)
		return err
	})
}

// reloadAfterClose reloads the queue once an overlay that changed it closes.
func (m Model) reloadAfterClose(reload bool) tea.Cmd {
	if !reload {
		return nil
	}
	return m.op("reload", m.ctrl.LoadAll)
}

// expireToast schedules the toast expiring at at, ttl from now, to disappear.
func expireToast(ttl time.Duration, at time.Time) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{at: at}
	})
}
