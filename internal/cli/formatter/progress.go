package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderAbsorption renders how much of the planned amount has been realized
// as a bar like [████░░░░]  45%. Below a third is red, below two thirds
// yellow. Nothing planned renders as a dim dash.
func RenderAbsorption(realized, planned float64, width int) string {
	if planned <= 0 {
		return Dim("--")
	}
	pct := min(max(realized/planned, 0), 1)
	width = max(width, 2)

	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
