package main

import (
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/names"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Report region names that do not join across datasets",
	Long: "Lists outlet-table states and districts with no exact match in the population table or the boundary files, " +
		"with suggestions that differ only in case, width or spacing. Nothing is renamed; confirmed fixes go in the alias file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		strict, _ := cmd.Flags().GetBool("strict")

		engine, err := loadEngine(ctx, cfg, "data")
		if err != nil {
			return err
		}
		return runDiagnose(cmd.OutOrStdout(), engine, strict)
	},
}

func runDiagnose(out io.Writer, engine *dashboard.Engine, strict bool) error {
	r := engine.Diagnose()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeMismatches(w, "Districts without population", r.DistrictsWithoutPopulation)
	writeMismatches(w, "Districts without boundary", r.DistrictsWithoutBoundary)
	writeMismatches(w, "States without boundary", r.StatesWithoutBoundary)

	_, _ = fmt.Fprintf(w, "Boundaries without population (%d)\n", len(r.BoundariesWithoutPopulation))
	for _, n := range r.BoundariesWithoutPopulation {
		_, _ = fmt.Fprintf(w, "  %s\n", n)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if strict && r.Total() > 0 {
		return eris.Errorf("diagnose: %d unmatched names", r.Total())
	}
	return nil
}

func writeMismatches(w io.Writer, title string, ms []names.Mismatch) {
	_, _ = fmt.Fprintf(w, "%s (%d)\n", title, len(ms))
	for _, m := range ms {
		hint := "-"
		if len(m.Suggestions) > 0 {
			hint = "did you mean " + strings.Join(m.Suggestions, ", ")
		}
		_, _ = fmt.Fprintf(w, "  %s\t%d outlets\t%s\n", m.Name, m.Outlets, hint)
	}
	_, _ = fmt.Fprintln(w)
}

func init() {
	diagnoseCmd.Flags().Bool("strict", false, "exit non-zero when any name is unmatched")
	rootCmd.AddCommand(diagnoseCmd)
}
