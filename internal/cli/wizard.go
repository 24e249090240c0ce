package cli

import (
	"fmt"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sisaraHuhTheme returns a huh theme using the formatter palette.
func sisaraHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// wizardConfirm creates a huh form for a yes/no confirmation.
func wizardConfirm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(sisaraHuhTheme()).WithShowHelp(false)
}

func huhConfirm(title string) (bool, error) {
	var ok bool
	if err := wizardConfirm(title, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirmDestructive decides whether a destructive command may proceed.
// --yes or a disabled prompt skip the question; without a terminal the
// command refuses instead of blocking on stdin.
func confirmDestructive(cmd *cobra.Command, app *App, yes bool, title string) (bool, error) {
	if yes || !app.ConfirmPrompt {
		return true, nil
	}
	if app.IsInteractive == nil || !app.IsInteractive() {
		return false, fmt.Errorf("%s: refusing without --yes in a non-interactive session", cmd.CommandPath())
	}
	confirm := app.Confirm
	if confirm == nil {
		confirm = huhConfirm
	}
	ok, err := confirm(title)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
	}
	return ok, nil
}
