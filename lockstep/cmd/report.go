package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/lockstep/benchmark"
	"github.com/sarchlab/lockstep/datarecording"
	"github.com/sarchlab/lockstep/tracing"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <record.sqlite3>",
	Short: "Summarize a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		reader, err := datarecording.OpenReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		return writeReport(c.Context(), reader, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func writeReport(
	ctx context.Context,
	reader *datarecording.Reader,
	out io.Writer,
) error {
	sessions, err := datarecording.Read[tracing.SessionEntry](
		ctx, reader, tracing.SessionTable,
		datarecording.Filter{OrderBy: "StartedAt"})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tPRIMARY\tSECONDARY\tSTEPS\tSWAPS\tMEAN SPEED")

	for _, entry := range sessions {
		of := datarecording.Filter{
			Where: "Session = ?",
			Args:  []any{entry.Session},
		}

		steps, err := reader.Count(ctx, tracing.StepTable, of)
		if err != nil {
			return err
		}

		swaps, err := reader.Count(ctx, tracing.SwapTable, of)
		if err != nil {
			return err
		}

		samples, err := datarecording.Read[tracing.SpeedEntry](
			ctx, reader, tracing.SpeedTable, of)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			entry.Session, entry.Primary, entry.Secondary,
			steps/2, swaps, meanSpeed(samples))
	}

	return w.Flush()
}

func meanSpeed(samples []tracing.SpeedEntry) string {
	if len(samples) == 0 {
		return benchmark.Placeholder
	}

	sum := 0.0
	for _, s := range samples {
		sum += s.Measured
	}

	return benchmark.FormatSpeed(sum / float64(len(samples)))
}
