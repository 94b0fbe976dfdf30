package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: SuccessIcon},
		{name: "error", format: FormatError, icon: ErrorIcon},
		{name: "warning", format: FormatWarning, icon: WarningIcon},
		{name: "info", format: FormatInfo, icon: InfoIcon},
		{name: "title", format: FormatTitle, icon: QueueIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("3 items saved")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "3 items saved")
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"ID", "Merchant"}, [][]string{{"1", "Tesco"}, {"22", "Pret"}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "Merchant")
	assert.True(t, strings.Index(out, "Tesco") < strings.Index(out, "Pret"))
}
