package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/config"
	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/datastore"
	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/filter"
	"github.com/sells-group/outlet-density/internal/names"
)

// loadEngine validates the config for mode, loads every dataset and builds
// the view engine. Any load failure is fatal for the command.
func loadEngine(ctx context.Context, c *config.Config, mode string) (*dashboard.Engine, error) {
	if c == nil {
		return nil, eris.New("config not loaded")
	}
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	aliases, err := names.LoadAliases(c.Data.AliasesPath)
	if err != nil {
		return nil, err
	}
	if aliases.Len() > 0 {
		zap.L().Info("applying name aliases", zap.Int("count", aliases.Len()), zap.String("path", c.Data.AliasesPath))
	}

	store, err := datastore.Load(ctx, datastore.Sources{
		OutletsPath:       c.Data.OutletsPath,
		PopulationPath:    c.Data.PopulationPath,
		StatesPath:        c.Data.StatesPath,
		DistrictsPath:     c.Data.DistrictsPath,
		StateNameField:    c.Data.StateNameField,
		DistrictNameField: c.Data.DistrictNameField,
		Aliases:           aliases,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load datasets")
	}

	return dashboard.NewEngine(store, dashboard.Config{
		TopN: c.Density.TopN,
		Thresholds: density.Thresholds{
			UnderservedMax: c.Density.UnderservedMax,
			SaturatedMin:   c.Density.SaturatedMin,
		},
	}), nil
}

// selectionFor builds a filter from --state and --district flag values. Empty
// slices keep everything selected.
func selectionFor(engine *dashboard.Engine, states, districts []string) *filter.Controller {
	ctrl := engine.NewController()
	if len(states) > 0 {
		ctrl.SelectStates(states)
	}
	if len(districts) > 0 {
		ctrl.SelectDistricts(districts)
	}
	return ctrl
}
