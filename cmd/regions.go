package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/outlet-density/internal/dashboard"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the zoom regions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := loadEngine(ctx, cfg, "data")
		if err != nil {
			return err
		}
		return runRegions(cmd.OutOrStdout(), engine)
	},
}

func runRegions(out io.Writer, engine *dashboard.Engine) error {
	for _, r := range engine.Regions() {
		if _, err := fmt.Fprintln(out, r); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
