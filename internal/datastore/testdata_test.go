package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const outletsCSV = "\ufeffid,name,state,district,latitude,longitude\n" +
	"1,ZUS Petaling,Selangor,Petaling,1.0,1.0\n" +
	"2,ZUS Klang,Selangor,Klang,3.0,3.0\n" +
	"3,ZUS JB,Johor,Johor Bahru,1.0,15.0\n" +
	"4,ZUS Nowhere,Selangor,Petaling,n/a,1.0\n" +
	"5,ZUS Empty,Johor,Johor Bahru,,\n"

const populationCSV = "district,population\n" +
	"Petaling,1800\n" +
	"Klang,1000.5\n" +
	"Johor Bahru,unknown\n" +
	"Petaling,1\n"

const statesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME_1": "Selangor"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature", "properties": {"NAME_1": "Johor"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[12,0],[20,0],[20,10],[12,10],[12,0]]]]}},
    {"type": "Feature", "properties": {"NAME_1": "Selangor"},
     "geometry": {"type": "Polygon", "coordinates": [[[30,30],[31,30],[31,31],[30,31],[30,30]]]}},
    {"type": "Feature", "properties": {"NAME_1": null},
     "geometry": {"type": "Polygon", "coordinates": [[[40,40],[41,40],[41,41],[40,41],[40,40]]]}},
    {"type": "Feature", "properties": {"NAME_1": "Line"},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}}
  ]
}`

const districtsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAM": "Petaling"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}},
    {"type": "Feature", "properties": {"NAM": "Klang"},
     "geometry": {"type": "Polygon", "coordinates": [[[2,2],[5,2],[5,5],[2,5],[2,2]]]}},
    {"type": "Feature", "properties": {"NAM": "Johor Bahru"},
     "geometry": {"type": "Polygon", "coordinates": [[[14,0],[16,0],[16,2],[14,2],[14,0]]]}}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		OutletsPath:       writeFile(t, dir, "outlets.csv", outletsCSV),
		PopulationPath:    writeFile(t, dir, "population.csv", populationCSV),
		StatesPath:        writeFile(t, dir, "states.geojson", statesGeoJSON),
		DistrictsPath:     writeFile(t, dir, "districts.geojson", districtsGeoJSON),
		StateNameField:    "NAME_1",
		DistrictNameField: "NAM",
	}
}
