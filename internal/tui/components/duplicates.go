package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// DuplicateCards renders a duplicate set as stacked cards, item first.
// Only raw cards can be acted on; saved ones are marked read-only.
func DuplicateCards(cards []model.Duplicate, cursor, width int, currency string, theme themes.Theme) string {
	width = max(30, width)
	rendered := make([]string, 0, len(cards))
	for i, card := range cards {
		heading := "Queue item"
		if i == 0 {
			heading = "This item"
		}
		if card.Type == model.DuplicateSaved {
			heading = "Saved expense · read-only"
		}

		body := lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("%s  #%d", theme.Bold.Render(heading), card.ID),
			fmt.Sprintf("%s  %s", format.Date(card.TransactionDate), format.SignedCurrency(card.Amount, currency)),
			format.Truncate(format.Sanitize(card.MerchantName), width-6),
			theme.Faint.Render(format.Truncate(format.Sanitize(card.Description), width-6)),
		)

		style := theme.Card
		if i == cursor {
			style = theme.ActiveCard
		}
		rendered = append(rendered, style.Width(width-2).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
