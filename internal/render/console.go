package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

var (
	subtle = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	gain   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	loss   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	headerStyle   = lipgloss.NewStyle().Bold(true)
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
	positiveStyle = lipgloss.NewStyle().Foreground(gain)
	negativeStyle = lipgloss.NewStyle().Foreground(loss)
	mutedStyle    = lipgloss.NewStyle().Foreground(subtle)
	failureStyle  = lipgloss.NewStyle().Foreground(loss).Bold(true)
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

var columns = []string{"SYMBOL", "PRICE A", "PRICE B", "DIFF", "DIFF %", "EST. PROFIT"}

// Console prints every scan result it receives as a table.
type Console struct {
	w         io.Writer
	l         *zap.Logger
	reference string
	compared  string
}

// NewConsole creates a console renderer. reference and compared label the two price columns.
func NewConsole(w io.Writer, l *zap.Logger, reference, compared string) *Console {
	return &Console{w: w, l: l, reference: reference, compared: compared}
}

// Run renders results from ch until ctx is done or ch is closed.
func (c *Console) Run(ctx context.Context, ch <-chan domain.ScanResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case result, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintln(c.w, c.Render(result)); err != nil {
				c.l.Warn("failed to print scan result", zap.Error(err))
			}
		}
	}
}

// Render returns the printable form of one result.
func (c *Console) Render(result domain.ScanResult) string {
	title := mutedStyle.Render(fmt.Sprintf("%s  %s vs %s",
		result.FinishedAt.Format("15:04:05"), c.reference, c.compared))

	if result.IsFailure() {
		return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, failureStyle.Render(result.UserMessage())))
	}
	if len(result.Opportunities) == 0 {
		return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, result.UserMessage()))
	}

	rows := Rows(result)
	table := make([][]string, 0, len(rows)+1)
	table = append(table, columns)
	for _, r := range rows {
		table = append(table, []string{r.Symbol, r.PriceA, r.PriceB, r.Difference, r.Percentage, r.EstimatedProfit})
	}

	widths := make([]int, len(columns))
	for _, line := range table {
		for i, cell := range line {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, 0, len(table)+1)
	lines = append(lines, title)
	for i, line := range table {
		cells := make([]string, 0, len(line))
		for j, cell := range line {
			style := cellStyle.Width(widths[j] + 2)
			switch {
			case i == 0:
				style = style.Inherit(headerStyle)
			case j == 4 && rows[i-1].Positive:
				style = style.Inherit(positiveStyle)
			case j == 4 && rows[i-1].Negative:
				style = style.Inherit(negativeStyle)
			}
			cells = append(cells, style.Render(cell))
		}
		lines = append(lines, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
	}

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
