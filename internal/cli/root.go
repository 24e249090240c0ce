package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Budget      service.BudgetService
	Sync        service.SyncService
	MasterData  service.MasterDataService
	Revisions   service.RevisionService
	Maintenance service.MaintenanceService

	// ConfirmPrompt asks before destructive commands unless --yes is given.
	ConfirmPrompt bool
	// IsInteractive reports whether stdin is a terminal. Nil means it is not.
	IsInteractive func() bool
	// Confirm shows a yes/no prompt. Nil means the huh form.
	Confirm func(title string) (bool, error)
}

// NewRootCmd creates the top-level "sisara" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sisara",
		Short:         "Budget plan tree editor",
		Long:          "sisara keeps a hierarchical budget plan (program down to detail lines), its code catalog and named revisions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTreeCmd(app),
		newMasterCmd(app),
		newRevisionCmd(app),
		newSeedCmd(app),
		newVerifyCmd(app),
	)

	return root
}

// describeError turns typed service errors into messages that say what to
// do next. Other errors pass through unchanged.
func describeError(err error) error {
	if err == nil {
		return nil
	}

	var verr *domain.ValidationError
	var ambiguous *domain.AmbiguousTargetError
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid input: %w", err)
	case errors.As(err, &ambiguous):
		return fmt.Errorf("%w (pass the description to choose one)", err)
	case errors.As(err, &conflict):
		return fmt.Errorf("%w (use update to change its description)", err)
	}
	return err
}

// runE wraps a command body so its errors go through describeError.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return describeError(fn(cmd, args))
	}
}
