// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4") // Teal
	// SuccessColor indicates successful operations and positive balances.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors and negative balances.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// HeaderStyle is used for table headers and header categories.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats secondary text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// Amount renders a decimal with color: red when negative, green when
// positive, subtle when zero. Plain decimal text only; currency symbols and
// locale formatting stay out of the engine.
func Amount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch {
	case d.IsNegative():
		return ErrorStyle.Render(s)
	case d.IsPositive():
		return SuccessStyle.Render(s)
	default:
		return SubtleStyle.Render(s)
	}
}
