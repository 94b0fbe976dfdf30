package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/queue"
	"github.com/Veraticus/expense-queue/internal/tui/components"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	snap := m.ctrl.Snapshot()
	header := m.renderHeader(snap)
	status := m.renderStatusBar(snap)
	bodyHeight := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(status))

	var body string
	switch {
	case m.confirm != nil:
		body = m.place(bodyHeight, m.renderConfirm())
	case snap.Modal == queue.ModalNone || snap.Modal == queue.ModalConfirm:
		body = m.renderList(snap, bodyHeight)
	default:
		body = m.place(bodyHeight, m.renderOverlay(snap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("Expense queue"),
		"",
		m.spinner.View()+" "+lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading queue..."),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader(snap queue.Snapshot) string {
	title := m.theme.Title.Render("Expense queue")
	count := fmt.Sprintf("%d items", len(snap.Items))
	if len(snap.Items) != snap.Total {
		count = fmt.Sprintf("%d of %d items", len(snap.Items), snap.Total)
	}
	parts := []string{title, m.theme.Faint.Render(count)}
	if snap.UpdateMode {
		parts = append(parts, m.theme.Badge.Render("UPDATE"))
	}
	if !snap.Filter.IsZero() {
		parts = append(parts, m.theme.Badge.Render("FILTERED"))
	}
	if m.searching {
		parts = append(parts, m.search.View())
	} else if q := snap.Filter.Search; q != "" {
		parts = append(parts, m.theme.Faint.Render("/"+format.Sanitize(q)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderList(snap queue.Snapshot, height int) string {
	if snap.Empty() {
		return m.place(height, lipgloss.JoinVertical(
			lipgloss.Center,
			m.theme.StatusSuccess.Render("Queue empty"),
			m.theme.Faint.Render("Nothing left to review. R reloads, q quits."),
		))
	}
	if len(snap.Items) == 0 {
		return m.place(height, m.theme.Faint.Render("No items match the filter. Esc or f to change it."))
	}

	list := m.list
	list.Resize(m.width, height)
	list.SetRows(components.QueueRows{
		Selected:   snap.Selected,
		Duplicates: snap.Duplicates,
		Items:      snap.Items,
		Categories: m.ctrl.Categories(),
		Focused:    snap.Focused,
	})
	return list.View()
}

func (m Model) renderOverlay(snap queue.Snapshot) string {
	width := m.overlayWidth()
	var content string
	switch snap.Modal {
	case queue.ModalCategory, queue.ModalType:
		content = m.picker.View()
	case queue.ModalMerchant:
		content = m.merchant.View()
	case queue.ModalTags:
		content = m.tags.View()
	case queue.ModalDescription:
		content = m.text.View()
	case queue.ModalFilter:
		content = m.filter.View()
	case queue.ModalMerge:
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderMergeSummary(snap.Merge), "", m.merge.View())
	case queue.ModalDuplicate:
		content = m.renderDuplicate(snap, width)
	case queue.ModalDuplicatesPage:
		content = m.renderDuplicatesPage(snap, width)
	case queue.ModalHelp:
		content = lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Title.Render("Keys"),
			"",
			m.help.FullHelpView(m.keymap.FullHelp()),
			"",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press ? or Esc to close help"),
		)
		return m.theme.Modal.Render(content)
	}
	return m.theme.Modal.Width(width).Render(content)
}

func (m Model) renderMergeSummary(s *queue.MergeSummary) string {
	if s == nil {
		return m.theme.Title.Render("Merge")
	}
	lines := []string{
		m.theme.Title.Render(fmt.Sprintf("Merge %d items", s.Count)),
		fmt.Sprintf("Total     %s", m.theme.Bold.Render(format.Currency(s.Total, s.Currency))),
		fmt.Sprintf("Earliest  %s", format.Date(s.EarliestDate)),
	}
	if len(s.Categories) > 0 {
		lines = append(lines, fmt.Sprintf("Category  %s", format.Sanitize(strings.Join(s.Categories, ", "))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderDuplicate(snap queue.Snapshot, width int) string {
	v := snap.Duplicate
	if v == nil {
		return ""
	}
	currency := ""
	for _, item := range snap.Items {
		if item.ID == v.ItemID {
			currency = item.Currency
			break
		}
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("Possible duplicates"),
		"",
		components.DuplicateCards(v.Cards, v.Cursor, width-4, currency, m.theme),
		"",
		m.theme.Faint.Render("j/k move · X discard queue item · esc close"),
	)
}

func (m Model) renderDuplicatesPage(snap queue.Snapshot, width int) string {
	v := snap.Page
	if v == nil || v.Count == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Title.Render("Duplicates"),
			"",
			m.theme.StatusSuccess.Render("No duplicate sets left"),
			"",
			m.theme.Faint.Render("esc close"),
		)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render(fmt.Sprintf("Duplicates · set %d of %d", v.Index+1, v.Count)),
		"",
		components.DuplicateCards(v.Cards, v.Cursor, width-4, "", m.theme),
		"",
		m.theme.Faint.Render("j/k move · n/p set · s save · X discard · esc close"),
	)
}

func (m Model) renderConfirm() string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("Confirm"),
		"",
		format.Sanitize(m.confirm.message),
		"",
		m.theme.Key.Render("y")+" yes  "+m.theme.Key.Render("n")+" no",
	)
	return m.theme.Modal.Width(m.overlayWidth()).Render(content)
}

// renderStatusBar renders the bottom status line and the short help.
func (m Model) renderStatusBar(snap queue.Snapshot) string {
	var left string
	switch {
	case m.toast.Active(m.now()):
		left = m.toastStyle().Render(m.toast.Message)
	case snap.Busy || m.running > 0:
		left = m.spinner.View() + " working..."
	case snap.UpdateMode:
		left = m.theme.StatusInfo.Render("Update mode")
	}

	var right []string
	if n := len(snap.Selected); n > 0 {
		right = append(right, fmt.Sprintf("%d selected", n))
	}
	if len(snap.Duplicates) > 0 {
		right = append(right, fmt.Sprintf("%s %d", components.MarkDuplicate, len(snap.Duplicates)))
	}
	rightText := strings.Join(right, " · ")

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(rightText))
	line := m.theme.StatusBar.Width(m.width).MaxWidth(m.width).Render(left + strings.Repeat(" ", gap) + rightText)

	hints := m.help.ShortHelpView(m.keymap.ShortHelp())
	if snap.UpdateMode {
		hints = m.help.ShortHelpView(m.keymap.updateHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, hints)
}

func (m Model) toastStyle() lipgloss.Style {
	switch m.toast.Level {
	case format.LevelSuccess:
		return m.theme.StatusSuccess
	case format.LevelWarning:
		return m.theme.StatusWarning
	case format.LevelError:
		return m.theme.StatusError
	default:
		return m.theme.StatusInfo
	}
}

func (m Model) place(height int, content string) string {
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}
