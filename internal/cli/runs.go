package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/articlescore/internal/export"
)

var runsShow string

// runsCmd lists runs stored by the sqlite sink
var runsCmd = &cobra.Command{
	Use:   "runs <db>",
	Short: "List runs stored in a SQLite export",
	Long: `Runs lists the batches stored in a SQLite export, newest first.
With --show it prints the records of one run as CSV.

Example:
  articlescore runs scores.db
  articlescore runs scores.db --show 01HZX...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Opening a missing path would create an empty database
		if _, err := os.Stat(args[0]); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("database %s does not exist", args[0])
			}
			return fmt.Errorf("stat database: %w", err)
		}

		db, err := export.OpenSQLite(ctx, args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		out := cmd.OutOrStdout()

		if runsShow != "" {
			found, err := db.HasRun(ctx, runsShow)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("run %s not found", runsShow)
			}
			records, err := db.Records(ctx, runsShow)
			if err != nil {
				return err
			}
			return export.WriteCSV(ctx, out, records, viper.GetInt("output.precision"))
		}

		runs, err := db.Runs(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tDOCUMENTS\tFAILED\tLEXICON")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Total, r.Failed, r.LexiconFingerprint)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsShow, "show", "", "print the records of this run as CSV")
}
