package datastore

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/sells-group/outlet-density/internal/model"
)

// Outlet table columns. id and name are optional.
const (
	colState     = "state"
	colDistrict  = "district"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colID        = "id"
	colName      = "name"
)

// OutletStats summarises one outlet table read.
type OutletStats struct {
	Rows      int
	Unlocated int
	Skipped   int
}

// ReadOutlets parses the outlet table. Rows whose latitude or longitude is
// missing or non-numeric are kept with nil coordinates so they never enter
// spatial operations.
func ReadOutlets(ctx context.Context, r io.Reader) ([]model.Outlet, OutletStats, error) {
	t, err := readCSV(ctx, r)
	if err != nil {
		return nil, OutletStats{}, &DataLoadError{Source: SourceOutlets, Err: err}
	}
	return outletsFromTable(t)
}

func outletsFromTable(t *table) ([]model.Outlet, OutletStats, error) {
	idx, err := t.requireColumns(SourceOutlets, colState, colDistrict, colLatitude, colLongitude)
	if err != nil {
		return nil, OutletStats{}, err
	}
	stateIdx, districtIdx, latIdx, lngIdx := idx[0], idx[1], idx[2], idx[3]
	idIdx, nameIdx := t.column(colID), t.column(colName)

	stats := OutletStats{Skipped: t.skipped}
	outlets := make([]model.Outlet, 0, len(t.rows))
	for i, row := range t.rows {
		o := model.Outlet{
			ID:       field(row, idIdx),
			Name:     field(row, nameIdx),
			State:    field(row, stateIdx),
			District: field(row, districtIdx),
			Lat:      parseCoord(field(row, latIdx)),
			Lng:      parseCoord(field(row, lngIdx)),
		}
		if o.ID == "" {
			o.ID = strconv.Itoa(i + 1)
		}
		if !o.Located() {
			o.Lat, o.Lng = nil, nil
			stats.Unlocated++
		}
		outlets = append(outlets, o)
	}
	stats.Rows = len(outlets)
	return outlets, stats, nil
}

// parseCoord returns nil for anything that is not a finite number.
func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
