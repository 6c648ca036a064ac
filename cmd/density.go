package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/model"
)

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Print outlets per 100k residents by district",
	Long:  "Computes the density table for a selection and writes it as an aligned table, CSV or an XLSX workbook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		states, _ := cmd.Flags().GetStringSlice("state")
		districts, _ := cmd.Flags().GetStringSlice("district")
		region, _ := cmd.Flags().GetString("region")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		if format == "xlsx" && outPath == "" {
			return eris.New("density: --out is required for xlsx output")
		}

		engine, err := loadEngine(ctx, cfg, "data")
		if err != nil {
			return err
		}

		if outPath != "" {
			return writeDensityFile(outPath, engine, states, districts, region, format)
		}
		return runDensity(cmd.OutOrStdout(), engine, states, districts, region, format)
	},
}

// writeDensityFile writes the density table to path. A failed close is
// reported when the write itself succeeded.
func writeDensityFile(path string, engine *dashboard.Engine, states, districts []string, region, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "density: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "density: close %s", path)
		}
	}()
	return runDensity(f, engine, states, districts, region, format)
}

func runDensity(out io.Writer, engine *dashboard.Engine, states, districts []string, region, format string) error {
	rows, err := engine.Density(selectionFor(engine, states, districts), region)
	if err != nil {
		return err
	}

	switch format {
	case "table", "":
		return writeDensityTable(out, rows)
	case "csv":
		return density.WriteCSV(out, rows)
	case "xlsx":
		return density.WriteXLSX(out, rows)
	default:
		return eris.Errorf("density: unknown format %q (want table, csv or xlsx)", format)
	}
}

func writeDensityTable(out io.Writer, rows []model.DensityRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, c := range density.Columns {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, c)
	}
	_, _ = fmt.Fprintln(w)

	for _, rec := range density.Records(rows) {
		for i, v := range rec {
			if v == "" {
				v = "-"
			}
			if i > 0 {
				_, _ = fmt.Fprint(w, "\t")
			}
			_, _ = fmt.Fprint(w, v)
		}
		_, _ = fmt.Fprintln(w)
	}
	return w.Flush()
}

func init() {
	densityCmd.Flags().StringSlice("state", nil, "states to include (default all)")
	densityCmd.Flags().StringSlice("district", nil, "districts to include (default all in the selected states)")
	densityCmd.Flags().String("region", model.AllRegions, "state to zoom to")
	densityCmd.Flags().String("format", "table", "output format: table, csv or xlsx")
	densityCmd.Flags().String("out", "", "write to a file instead of stdout")
	rootCmd.AddCommand(densityCmd)
}
