package density

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outlet-density/internal/model"
)

// Columns is the header of every exported density table, in output order.
var Columns = []string{
	"District",
	"Total Store",
	"Population",
	"Population (mil)",
	"Density per 100k Population",
}

// Records renders rows as string records. Missing values are empty strings.
func Records(rows []model.DensityRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := []string{r.District, strconv.Itoa(r.OutletCount), "", "", ""}
		if r.Population != nil {
			rec[2] = strconv.FormatInt(int64(*r.Population), 10)
		}
		if r.PopulationMillions != nil {
			rec[3] = strconv.FormatFloat(*r.PopulationMillions, 'f', 3, 64)
		}
		if r.Per100k != nil {
			rec[4] = strconv.FormatFloat(*r.Per100k, 'f', 0, 64)
		}
		out = append(out, rec)
	}
	return out
}

// WriteCSV writes the density table as CSV with a header row.
func WriteCSV(w io.Writer, rows []model.DensityRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "density: write csv header")
	}
	if err := cw.WriteAll(Records(rows)); err != nil {
		return eris.Wrap(err, "density: write csv rows")
	}
	return nil
}

// WriteXLSX writes the density table as a single-sheet workbook. Numeric
// columns are typed cells; missing values are left blank.
func WriteXLSX(w io.Writer, rows []model.DensityRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Density")
	if err != nil {
		return eris.Wrap(err, "density: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.District)
		row.AddCell().SetInt(r.OutletCount)

		pop := row.AddCell()
		if r.Population != nil {
			pop.SetInt64(int64(*r.Population))
		}
		mil := row.AddCell()
		if r.PopulationMillions != nil {
			mil.SetFloatWithFormat(*r.PopulationMillions, "0.000")
		}
		dens := row.AddCell()
		if r.Per100k != nil {
			dens.SetInt(int(*r.Per100k))
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "density: write xlsx")
	}
	return nil
}
