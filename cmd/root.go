package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/config"
)

// cfg is loaded once per invocation, before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:               "outlet-density",
	Short:             "Outlet density dashboard backend",
	Long:              "Loads outlet locations, district population and state/district boundaries, then serves or prints outlet counts, zoomed map layers and outlets per 100k residents.",
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

// loadSettings reads config.yaml and OUTLETS_* overrides, then installs the
// global logger the packages pick up through zap.L().
func loadSettings(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "outlet-density: load settings")
	}
	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrapf(err, "outlet-density: start %s logger", c.Log.Format)
	}
	cfg = c
	zap.L().Debug("settings loaded",
		zap.String("outlets", c.Data.OutletsPath),
		zap.String("population", c.Data.PopulationPath),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
