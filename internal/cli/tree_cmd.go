package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/importer"
	"github.com/alexanderramin/sisara/internal/tree"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tree",
		Aliases: []string{"t"},
		Short:   "View and edit the budget tree",
	}

	cmd.AddCommand(
		newTreeListCmd(app),
		newTreeShowCmd(app),
		newTreeAddCmd(app),
		newTreeAddChildCmd(app),
		newTreeUpdateCmd(app),
		newTreeRemoveCmd(app),
		newTreeCopyCmd(app),
		newTreeMonthlyCmd(app),
		newTreeSyncCmd(app),
		newTreeBrowseCmd(app),
	)

	return cmd
}

func newTreeListCmd(app *App) *cobra.Command {
	var (
		asJSON    bool
		showIDs   bool
		collapsed bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the whole tree",
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			forest, err := app.Budget.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, forest)
			}
			if len(forest) == 0 {
				fmt.Fprintln(out, formatter.Dim("No line items. Add one with 'sisara tree add' or load a file with 'sisara tree sync'."))
				return nil
			}

			items := formatter.ForestItems(forest, collapsed)
			if showIDs {
				for i := range items {
					items[i].Title = formatter.TruncID(items[i].ID) + " " + items[i].Title
				}
			}
			fmt.Fprint(out, formatter.RenderTree(items))
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%d line(s)", tree.Count(forest))))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the nested tree as JSON")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Prefix each line with its short ID")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "Hide children of lines closed in the browser")
	return cmd
}

func newTreeShowCmd(app *App) *cobra.Command {
	var (
		asJSON  bool
		subtree bool
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one line with its amounts and monthly allocation",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if subtree {
				node, err := app.Budget.GetSubtree(ctx, id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, node)
				}
				fmt.Fprint(out, formatter.FormatForest([]*domain.TreeNode{node}))
				return nil
			}

			item, err := app.Budget.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, item)
			}
			fmt.Fprintln(out, formatter.FormatLineItem(item))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&subtree, "subtree", false, "Show the line with all its descendants")
	return cmd
}

func newTreeAddCmd(app *App) *cobra.Command {
	var (
		flags  lineFlags
		parent string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a line, or a whole branch from a file",
		Long: `Add a line at the end of its siblings. Without --parent the line becomes a root.

With --file every root of the tree file is added, children included, under
--parent. IDs in the file are ignored; new lines always get fresh IDs.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var parentID *string
			if parent != "" {
				id, err := resolveLineItemID(ctx, app, parent)
				if err != nil {
					return err
				}
				parentID = &id
			}

			if file != "" {
				forest, err := importer.LoadForest(file)
				if err != nil {
					return err
				}
				if err := fileErrors(file, importer.ValidateForest(forest)); err != nil {
					return err
				}
				for _, node := range forest {
					if _, err := app.Budget.Create(ctx, node, parentID); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Added %d line(s) from %s\n", tree.Count(forest), file)
				return nil
			}

			node, err := flags.node(cmd.Flags())
			if err != nil {
				return err
			}
			id, err := app.Budget.Create(ctx, node, parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %s %s (%s)\n", node.Kind, domain.CoalesceStr(node.Code, node.Description), formatter.TruncID(id))
			return nil
		}),
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&parent, "parent", "", "Parent line ID or unique prefix")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Tree file (JSON or YAML) to add instead of a single line")
	return cmd
}

func newTreeAddChildCmd(app *App) *cobra.Command {
	var flags lineFlags

	cmd := &cobra.Command{
		Use:   "add-child PARENT",
		Short: "Add a line as the last child of PARENT",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parentID, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			node, err := flags.node(cmd.Flags())
			if err != nil {
				return err
			}
			id, err := app.Budget.AddChild(ctx, parentID, node)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s under %s (%s)\n",
				node.Kind, domain.CoalesceStr(node.Code, node.Description), formatter.TruncID(parentID), formatter.TruncID(id))
			return nil
		}),
	}

	flags.register(cmd.Flags())
	return cmd
}

func newTreeUpdateCmd(app *App) *cobra.Command {
	var flags lineFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a line",
		Long: `Change only the fields given as flags. Pass an empty --before or --after
to clear that amount. Parent and position never change.`,
		Args: cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}
			if _, err := app.Budget.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatter.TruncID(id))
			return nil
		}),
	}

	flags.register(cmd.Flags())
	return cmd
}

func newTreeRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a line and everything under it",
		Args:    cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			node, err := app.Budget.GetSubtree(ctx, id)
			if err != nil {
				return err
			}
			n := tree.Count([]*domain.TreeNode{node})
			title := fmt.Sprintf("Delete %s %s and %d line(s) under it?", node.Kind, domain.CoalesceStr(node.Code, node.Description), n-1)
			ok, err := confirmDestructive(cmd, app, yes, title)
			if err != nil || !ok {
				return err
			}
			if _, err := app.Budget.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d line(s)\n", n)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newTreeCopyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "copy ID",
		Short: "Duplicate a line and its descendants right after it",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			newID, err := app.Budget.Copy(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", formatter.TruncID(id), formatter.TruncID(newID))
			return nil
		}),
	}
}

func newTreeMonthlyCmd(app *App) *cobra.Command {
	var (
		planned   float64
		realized  float64
		spm       string
		date      string
		verified  bool
		disbursed float64
	)

	cmd := &cobra.Command{
		Use:   "monthly ID MONTH",
		Short: "Set the allocation of one month (0 = January)",
		Long: `Set the planned and realized amounts for one month of a line.

Flags not given keep the month's current values. MONTH is 0 for January
through 11 for December.`,
		Args: cobra.ExactArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveLineItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return domain.NewValidationError("month", "must be a number from 0 to 11, got %q", args[1])
			}

			item, err := app.Budget.GetByID(ctx, id)
			if err != nil {
				return err
			}
			detail := item.MonthlyAllocation[domain.MonthKey(month)]
			changed := cmd.Flags().Changed
			if changed("planned") {
				detail.Planned = planned
			}
			if changed("realized") {
				detail.Realized = realized
			}
			if changed("spm") {
				detail.PaymentOrderNumber = spm
			}
			if changed("date") {
				detail.ExecutionDate = date
			}
			if changed("verified") {
				detail.Verified = verified
			}
			if changed("disbursed") {
				detail.DisbursedAmount = disbursed
			}

			if err := app.Budget.UpdateMonthlyAllocation(ctx, id, month, detail); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s for %s: planned %s, realized %s\n",
				formatter.MonthName(month), formatter.TruncID(id), formatter.Rupiah(detail.Planned), formatter.Rupiah(detail.Realized))
			return nil
		}),
	}

	cmd.Flags().Float64Var(&planned, "planned", 0, "Planned amount")
	cmd.Flags().Float64Var(&realized, "realized", 0, "Realized amount")
	cmd.Flags().StringVar(&spm, "spm", "", "Payment order (SPM) number")
	cmd.Flags().StringVar(&date, "date", "", "Execution date")
	cmd.Flags().BoolVar(&verified, "verified", false, "Mark the month as verified")
	cmd.Flags().Float64Var(&disbursed, "disbursed", 0, "Disbursed amount")
	return cmd
}

func newTreeSyncCmd(app *App) *cobra.Command {
	var (
		file string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the whole tree with the contents of a file",
		Long: `Replace every line with the tree in --file. IDs in the file are kept, so
the file produced by 'tree list --json' round-trips. The replacement is atomic:
on any error the current tree stays as it was.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			forest, err := importer.LoadForest(file)
			if err != nil {
				return err
			}
			if err := fileErrors(file, importer.ValidateForest(forest)); err != nil {
				return err
			}

			current, err := app.Budget.GetAll(ctx)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Replace %d current line(s) with %d from %s?", tree.Count(current), tree.Count(forest), file)
			ok, err := confirmDestructive(cmd, app, yes, title)
			if err != nil || !ok {
				return err
			}

			n, err := app.Sync.SyncAll(ctx, forest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d line(s)\n", n)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Tree file (JSON or YAML)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
