package cli

import (
	"fmt"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/importer"
	"github.com/spf13/cobra"
)

func newMasterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "master",
		Aliases: []string{"m", "catalog"},
		Short:   "Manage the code catalog used to fill in lines",
	}

	cmd.AddCommand(
		newMasterListCmd(app),
		newMasterAddCmd(app),
		newMasterImportCmd(app),
		newMasterSyncCmd(app),
		newMasterUpdateCmd(app),
		newMasterRemoveCmd(app),
	)

	return cmd
}

func newMasterListCmd(app *App) *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog codes, grouped by kind",
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if kind != "" {
				k := contract.ParseKind(kind)
				items, err := app.MasterData.ListByKind(ctx, k)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, items)
				}
				fmt.Fprint(out, formatter.FormatMasterDataKind(k, items))
				return nil
			}

			byKind, err := app.MasterData.ListAll(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, byKind)
			}
			if len(byKind) == 0 {
				fmt.Fprintln(out, formatter.Dim("The catalog is empty. Load one with 'sisara master import'."))
				return nil
			}
			fmt.Fprint(out, formatter.FormatMasterData(byKind))
			return nil
		}),
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list this kind")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newMasterAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add KIND CODE DESCRIPTION",
		Short: "Add a catalog code",
		Args:  cobra.ExactArgs(3),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			kind := contract.ParseKind(args[0])
			if _, err := app.MasterData.Create(cmd.Context(), kind, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", kind, args[1])
			return nil
		}),
	}
}

func newMasterImportCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add every code in a catalog file",
		Long: `Add every code in --file to the catalog. The import is all or nothing:
if any code already exists, nothing is added.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			catalog, err := importer.LoadMasterData(file)
			if err != nil {
				return err
			}
			if err := fileErrors(file, importer.ValidateMasterData(catalog)); err != nil {
				return err
			}
			n, err := app.MasterData.BulkCreate(cmd.Context(), catalogEntries(catalog))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d code(s)\n", n)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file (JSON or YAML) keyed by kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newMasterSyncCmd(app *App) *cobra.Command {
	var (
		file string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the codes of every kind present in a file",
		Long: `Replace the catalog entries of each kind listed in --file. Kinds the file
does not mention are left as they are.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			catalog, err := importer.LoadMasterData(file)
			if err != nil {
				return err
			}
			if err := fileErrors(file, importer.ValidateMasterData(catalog)); err != nil {
				return err
			}
			title := fmt.Sprintf("Replace the catalog for %d kind(s) from %s?", len(catalog), file)
			ok, err := confirmDestructive(cmd, app, yes, title)
			if err != nil || !ok {
				return err
			}
			counts, err := app.MasterData.SyncAll(cmd.Context(), catalog)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatKindCounts(counts))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file (JSON or YAML) keyed by kind")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newMasterUpdateCmd(app *App) *cobra.Command {
	var current string

	cmd := &cobra.Command{
		Use:   "update KIND CODE NEW_DESCRIPTION",
		Short: "Change the description of a catalog code",
		Args:  cobra.ExactArgs(3),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			kind := contract.ParseKind(args[0])
			target := domain.None[string]()
			if cmd.Flags().Changed("current-description") {
				target = domain.Some(current)
			}
			changed, err := app.MasterData.Update(cmd.Context(), kind, args[1], args[2], target)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Description unchanged."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", kind, args[1])
			return nil
		}),
	}

	cmd.Flags().StringVar(&current, "current-description", "", "Current description, to pick one of several components sharing CODE")
	return cmd
}

func newMasterRemoveCmd(app *App) *cobra.Command {
	var (
		description string
		yes         bool
	)

	cmd := &cobra.Command{
		Use:     "remove KIND CODE",
		Aliases: []string{"rm"},
		Short:   "Delete a catalog code",
		Args:    cobra.ExactArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			kind := contract.ParseKind(args[0])
			target := domain.None[string]()
			if cmd.Flags().Changed("description") {
				target = domain.Some(description)
			}
			ok, err := confirmDestructive(cmd, app, yes, fmt.Sprintf("Delete %s %s from the catalog?", kind, args[1]))
			if err != nil || !ok {
				return err
			}
			if _, err := app.MasterData.Delete(cmd.Context(), kind, args[1], target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", kind, args[1])
			return nil
		}),
	}

	cmd.Flags().StringVar(&description, "description", "", "Description, to pick one of several components sharing CODE")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// catalogEntries flattens a catalog file in hierarchy order.
func catalogEntries(catalog importer.MasterDataFile) []domain.MasterDataEntry {
	var entries []domain.MasterDataEntry
	for _, kind := range domain.RowKinds {
		for _, item := range catalog[kind] {
			entries = append(entries, domain.MasterDataEntry{
				Kind:        kind,
				Code:        item.Code,
				Description: item.Description,
			})
		}
	}
	return entries
}
