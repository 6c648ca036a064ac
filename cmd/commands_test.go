package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/outlet-density/internal/config"
	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/datastore"
	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/spatial"
)

func fp(v float64) *float64 { return &v }

func square(x0, y0, x1, y1 float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}},
	})
}

func testEngine() *dashboard.Engine {
	outlets := []model.Outlet{
		{ID: "1", State: "Selangor", District: "Petaling", Lng: fp(1), Lat: fp(1)},
		{ID: "2", State: "Selangor", District: "Petaling", Lng: fp(1.5), Lat: fp(1.5)},
		{ID: "3", State: "Selangor", District: "Klang", Lng: fp(3), Lat: fp(3)},
		{ID: "4", State: "Johor", District: "Johor Bahru", Lng: fp(15), Lat: fp(1)},
		{ID: "5", State: "Sabah", District: "Kota Kinabalu"},
	}
	population := []model.DistrictPopulation{
		{District: "Petaling", Population: model.HeadcountPtr(100_000)},
		{District: "Klang", Population: model.HeadcountPtr(20_000)},
		{District: "Johor Bahru", Population: model.HeadcountPtr(50_000)},
	}
	states := []model.Boundary{
		{Kind: model.BoundaryState, Name: "Selangor", Geometry: square(0, 0, 10, 10)},
		{Kind: model.BoundaryState, Name: "Johor", Geometry: square(12, 0, 20, 10)},
	}
	districts := []model.Boundary{
		{Kind: model.BoundaryDistrict, Name: "Petaling", Geometry: square(0, 0, 2, 2)},
		{Kind: model.BoundaryDistrict, Name: "Klang", Geometry: square(2, 2, 5, 5)},
		{Kind: model.BoundaryDistrict, Name: "Johor Bahru", Geometry: square(14, 0, 16, 2)},
	}
	return dashboard.NewEngine(datastore.New(outlets, population, states, districts), dashboard.Config{
		Thresholds: density.Thresholds{UnderservedMax: 2, SaturatedMin: 5},
	})
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestRunDensity_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDensity(&buf, testEngine(), nil, nil, model.AllRegions, "table"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "District"))
	assert.Contains(t, out, "Density per 100k Population")
	// null-density rows sort last and print placeholders
	assert.Equal(t, []string{"Kota", "Kinabalu", "1", "-", "-", "-"}, strings.Fields(lastLine(out)))
}

func TestRunDensity_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDensity(&buf, testEngine(), []string{"Selangor"}, nil, model.AllRegions, "csv"))

	assert.Equal(t,
		"District,Total Store,Population,Population (mil),Density per 100k Population\n"+
			"Klang,1,20000,0.020,5\n"+
			"Petaling,2,100000,0.100,2\n",
		buf.String())
}

func TestRunDensity_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDensity(&buf, testEngine(), nil, []string{"Klang"}, model.AllRegions, "xlsx"))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "Klang", f.Sheets[0].Rows[1].Cells[0].String())
}

func TestRunDensity_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := runDensity(&buf, testEngine(), nil, nil, model.AllRegions, "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	err = runDensity(&buf, testEngine(), nil, nil, "Penang", "table")
	var rnf *spatial.RegionNotFoundError
	assert.ErrorAs(t, err, &rnf)
}

func TestWriteDensityFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "density.xlsx")
	require.NoError(t, writeDensityFile(path, testEngine(), []string{"Johor"}, nil, model.AllRegions, "xlsx"))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "Johor Bahru", f.Sheets[0].Rows[1].Cells[0].String())

	csvPath := filepath.Join(t.TempDir(), "density.csv")
	require.NoError(t, writeDensityFile(csvPath, testEngine(), nil, []string{"Klang"}, model.AllRegions, "csv"))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Klang,1,20000,0.020,5")
}

func TestWriteDensityFile_Errors(t *testing.T) {
	err := writeDensityFile(filepath.Join(t.TempDir(), "missing", "density.csv"), testEngine(), nil, nil, model.AllRegions, "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "density: create")

	// the file is still closed when rendering fails
	path := filepath.Join(t.TempDir(), "density.txt")
	err = writeDensityFile(path, testEngine(), nil, nil, model.AllRegions, "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.NoError(t, os.Remove(path))
}

func TestRunSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSummary(&buf, testEngine(), nil, "Selangor", 1))

	out := buf.String()
	assert.Contains(t, out, "Selangor")
	assert.Contains(t, out, "3 outlets found in Selangor")
	assert.Contains(t, out, "Klang (5)")
	assert.Contains(t, out, "TOP DISTRICT")
	assert.NotContains(t, out, "Johor")
}

func TestRunRegions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runRegions(&buf, testEngine()))
	assert.Equal(t, "All\nJohor\nSelangor\n", buf.String())
}

func TestRunDiagnose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDiagnose(&buf, testEngine(), false))
	out := buf.String()
	assert.Contains(t, out, "Districts without population (1)")
	assert.Contains(t, out, "Kota Kinabalu")
	assert.Contains(t, out, "States without boundary (1)")

	buf.Reset()
	err := runDiagnose(&buf, testEngine(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmatched names")
}

const fixtureStates = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"NAME_1":"Selangor"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
 {"type":"Feature","properties":{"NAME_1":"Johor"},"geometry":{"type":"Polygon","coordinates":[[[12,0],[20,0],[20,10],[12,10],[12,0]]]}}
]}`

const fixtureDistricts = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"NAM":"Petaling"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}},
 {"type":"Feature","properties":{"NAM":"Johor Bahru"},"geometry":{"type":"Polygon","coordinates":[[[14,0],[16,0],[16,2],[14,2],[14,0]]]}}
]}`

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	return &config.Config{
		Data: config.DataConfig{
			OutletsPath:       write("outlets.csv", "state,district,latitude,longitude\nSelangor,Petaling,1,1\nJohor,Johor Bahru,1,15\n"),
			PopulationPath:    write("population.csv", "district,population\nPetaling,100\nJohor Bahru,50\n"),
			StatesPath:        write("states.geojson", fixtureStates),
			DistrictsPath:     write("districts.geojson", fixtureDistricts),
			StateNameField:    "NAME_1",
			DistrictNameField: "NAM",
		},
		Density: config.DensityConfig{TopN: 5, UnderservedMax: 2, SaturatedMin: 10},
		Server:  config.ServerConfig{Port: 8080, RatePerSec: 20, Burst: 40},
	}
}

func TestLoadEngine(t *testing.T) {
	c := fixtureConfig(t)

	engine, err := loadEngine(context.Background(), c, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Johor", "Selangor"}, engine.Regions())

	rows, err := engine.Density(engine.NewController(), model.AllRegions)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Johor Bahru", rows[0].District)
	assert.Equal(t, 2.0, *rows[0].Per100k)
	assert.Equal(t, model.Headcount(50_000), *rows[0].Population)
}

func TestLoadEngine_Aliases(t *testing.T) {
	c := fixtureConfig(t)
	aliases := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(aliases, []byte("population:\n  Petaling: Petaling Jaya\n"), 0o644))
	c.Data.AliasesPath = aliases

	engine, err := loadEngine(context.Background(), c, "data")
	require.NoError(t, err)
	report := engine.Diagnose()
	require.Len(t, report.DistrictsWithoutPopulation, 1)
	assert.Equal(t, "Petaling", report.DistrictsWithoutPopulation[0].Name)
}

func TestLoadEngine_Errors(t *testing.T) {
	_, err := loadEngine(context.Background(), nil, "data")
	assert.Error(t, err)

	c := fixtureConfig(t)
	c.Data.OutletsPath = ""
	_, err = loadEngine(context.Background(), c, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.outlets_path is required")

	c = fixtureConfig(t)
	c.Data.PopulationPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err = loadEngine(context.Background(), c, "data")
	var dle *datastore.DataLoadError
	require.True(t, errors.As(err, &dle), "want DataLoadError, got %v", err)
	assert.Equal(t, datastore.SourcePopulation, dle.Source)
}
