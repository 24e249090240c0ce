package cli

import (
	"fmt"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/importer"
	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	var (
		file string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a tree and catalog from one file, replacing both",
		Long: `Replace the whole tree and the catalog of every kind in --file with the
file's contents, in one transaction. The file is an object with "tree" and
"masterData" keys. Revisions are kept.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			seed, err := importer.LoadSeed(file)
			if err != nil {
				return err
			}
			if err := fileErrors(file, importer.ValidateSeed(seed)); err != nil {
				return err
			}
			ok, err := confirmDestructive(cmd, app, yes, fmt.Sprintf("Replace the tree and catalog with %s?", file))
			if err != nil || !ok {
				return err
			}

			res, err := app.Maintenance.Seed(cmd.Context(), seed.Tree, seed.MasterData)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d line(s)\n", res.LineItems)
			if len(res.MasterData) > 0 {
				fmt.Fprint(out, formatter.FormatKindCounts(res.MasterData))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (JSON or YAML)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report row counts and lines not reachable from a root",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			stats, err := app.Maintenance.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatVerify(db.Tables, stats.Counts, stats.Orphans))
			if len(stats.Orphans) > 0 {
				return fmt.Errorf("store has %d unreachable line item(s)", len(stats.Orphans))
			}
			return nil
		}),
	}
}
