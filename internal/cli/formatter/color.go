package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleCursor = lipgloss.NewStyle().Foreground(ColorFg).Background(lipgloss.Color("#504945"))
)

// ChangeStyle returns the style a line is drawn in for its change status.
func ChangeStyle(status domain.ChangeStatus) lipgloss.Style {
	switch status {
	case domain.ChangeNew:
		return StyleGreen
	case domain.ChangeChanged:
		return StyleYellow
	case domain.ChangeDeleted:
		return StyleRed.Strikethrough(true)
	case domain.ChangeBlocked:
		return StylePurple
	default:
		return StyleFg
	}
}

// ChangeBadge returns a short colored marker such as "● NEW". Unchanged
// lines get no badge.
func ChangeBadge(status domain.ChangeStatus) string {
	switch status {
	case domain.ChangeNew:
		return StyleGreen.Render("● NEW")
	case domain.ChangeChanged:
		return StyleYellow.Render("● CHANGED")
	case domain.ChangeDeleted:
		return StyleRed.Render("✖ DELETED")
	case domain.ChangeBlocked:
		return StylePurple.Render("■ BLOCKED")
	default:
		return ""
	}
}

// KindLabel renders a row kind as a fixed-width dim tag.
func KindLabel(kind domain.RowKind) string {
	return StyleDim.Render(fmt.Sprintf("%-12s", strings.ReplaceAll(string(kind), "_", " ")))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
