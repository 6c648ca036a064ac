package datastore

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/names"
)

const colPopulation = "population"

// PopulationStats summarises one population table read.
type PopulationStats struct {
	Rows       int
	Null       int
	Duplicates int
	Skipped    int
}

// ReadPopulationCSV parses a population table published in thousands and
// returns absolute head counts.
func ReadPopulationCSV(ctx context.Context, r io.Reader, aliases names.Aliases) ([]model.DistrictPopulation, PopulationStats, error) {
	t, err := readCSV(ctx, r)
	if err != nil {
		return nil, PopulationStats{}, &DataLoadError{Source: SourcePopulation, Err: err}
	}
	return populationFromTable(t, aliases)
}

// ReadPopulationXLSX is ReadPopulationCSV for the first sheet of a workbook.
func ReadPopulationXLSX(ctx context.Context, path string, aliases names.Aliases) ([]model.DistrictPopulation, PopulationStats, error) {
	t, err := readXLSX(ctx, path)
	if err != nil {
		return nil, PopulationStats{}, &DataLoadError{Source: SourcePopulation, Err: err}
	}
	return populationFromTable(t, aliases)
}

// populationFromTable is the single place where published thousands become
// head counts. Non-numeric values stay nil.
func populationFromTable(t *table, aliases names.Aliases) ([]model.DistrictPopulation, PopulationStats, error) {
	idx, err := t.requireColumns(SourcePopulation, colDistrict, colPopulation)
	if err != nil {
		return nil, PopulationStats{}, err
	}
	districtIdx, popIdx := idx[0], idx[1]

	stats := PopulationStats{Skipped: t.skipped}
	seen := make(map[string]bool, len(t.rows))
	out := make([]model.DistrictPopulation, 0, len(t.rows))
	for _, row := range t.rows {
		name := aliases.PopulationName(field(row, districtIdx))
		if name == "" {
			stats.Skipped++
			continue
		}
		if seen[name] {
			stats.Duplicates++
		}
		seen[name] = true

		dp := model.DistrictPopulation{District: name}
		if th, ok := parseThousands(field(row, popIdx)); ok {
			h := th.Headcount()
			dp.Population = &h
		} else {
			stats.Null++
		}
		out = append(out, dp)
	}
	stats.Rows = len(out)
	return out, stats, nil
}

func parseThousands(s string) (model.Thousands, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return model.Thousands(v), true
}
