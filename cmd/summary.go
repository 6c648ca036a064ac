package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print outlet counts by state and the top districts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		states, _ := cmd.Flags().GetStringSlice("state")
		region, _ := cmd.Flags().GetString("region")
		top, _ := cmd.Flags().GetInt("top")

		engine, err := loadEngine(ctx, cfg, "data")
		if err != nil {
			return err
		}
		return runSummary(cmd.OutOrStdout(), engine, states, region, top)
	},
}

func runSummary(out io.Writer, engine *dashboard.Engine, states []string, region string, top int) error {
	ctrl := selectionFor(engine, states, nil)

	view, err := engine.Map(ctrl, region, false)
	if err != nil {
		return err
	}
	byState, err := engine.StateCounts(ctrl, region)
	if err != nil {
		return err
	}
	byDistrict, err := engine.TopDistricts(ctrl, region, top)
	if err != nil {
		return err
	}
	insights, err := engine.Insights(ctrl, region)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Region:\t%s\n", view.Region)
	_, _ = fmt.Fprintf(w, "Outlets on map:\t%d\n", view.StoreCount)
	if view.TotalPopulation != nil {
		_, _ = fmt.Fprintf(w, "Population in view:\t%d\n", int64(*view.TotalPopulation))
	}
	if view.Message != "" {
		_, _ = fmt.Fprintf(w, "\t%s\n", view.Message)
	}

	writeCounts(w, "STATE", byState)
	writeCounts(w, "TOP DISTRICT", byDistrict)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Saturated:\t%s\n", districtList(insights.Saturated))
	_, _ = fmt.Fprintf(w, "Underserved:\t%s\n", districtList(insights.Underserved))
	return w.Flush()
}

func writeCounts(w io.Writer, label string, counts []model.GroupCount) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s\tOUTLETS\n", label)
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Key, c.Count)
	}
}

func districtList(rows []model.DensityRow) string {
	if len(rows) == 0 {
		return "-"
	}
	s := ""
	for i, r := range rows {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s (%.0f)", r.District, *r.Per100k)
	}
	return s
}

func init() {
	summaryCmd.Flags().StringSlice("state", nil, "states to include (default all)")
	summaryCmd.Flags().String("region", model.AllRegions, "state to zoom to")
	summaryCmd.Flags().Int("top", 0, "number of top districts (default from config)")
	rootCmd.AddCommand(summaryCmd)
}
