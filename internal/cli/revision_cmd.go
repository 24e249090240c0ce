package cli

import (
	"fmt"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/alexanderramin/sisara/internal/importer"
	"github.com/alexanderramin/sisara/internal/tree"
	"github.com/spf13/cobra"
)

func newRevisionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "revision",
		Aliases: []string{"rev"},
		Short:   "Save, inspect and restore snapshots of the tree",
	}

	cmd.AddCommand(
		newRevisionListCmd(app),
		newRevisionCreateCmd(app),
		newRevisionShowCmd(app),
		newRevisionRemoveCmd(app),
		newRevisionRestoreCmd(app),
	)

	return cmd
}

func newRevisionListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List revisions, newest first",
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			metas, err := app.Revisions.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, metas)
			}
			if len(metas) == 0 {
				fmt.Fprintln(out, formatter.Dim("No revisions yet. Save one with 'sisara revision create --note ...'."))
				return nil
			}
			fmt.Fprint(out, formatter.FormatRevisionList(metas))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newRevisionCreateCmd(app *App) *cobra.Command {
	var (
		note string
		file string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save the current tree, or a tree file, as a revision",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				id  string
				err error
			)
			if file != "" {
				forest, lerr := importer.LoadForest(file)
				if lerr != nil {
					return lerr
				}
				id, err = app.Revisions.Create(ctx, note, forest)
			} else {
				id, err = app.Revisions.Capture(ctx, note)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved revision %s\n", formatter.TruncID(id))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "What this revision is")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Save this tree file instead of the current tree")
	return cmd
}

func newRevisionShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a revision and its tree",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveRevisionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			rev, err := app.Revisions.Get(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rev)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRevision(rev))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newRevisionRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a revision",
		Args:    cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveRevisionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDestructive(cmd, app, yes, fmt.Sprintf("Delete revision %s?", formatter.TruncID(id)))
			if err != nil || !ok {
				return err
			}
			if _, err := app.Revisions.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed revision %s\n", formatter.TruncID(id))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newRevisionRestoreCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore ID",
		Short: "Replace the current tree with a revision",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveRevisionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			current, err := app.Budget.GetAll(ctx)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Replace %d current line(s) with revision %s?", tree.Count(current), formatter.TruncID(id))
			ok, err := confirmDestructive(cmd, app, yes, title)
			if err != nil || !ok {
				return err
			}
			n, err := app.Revisions.Restore(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d line(s) from revision %s\n", n, formatter.TruncID(id))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
