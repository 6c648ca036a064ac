package model

import "math"

// Thousands is a population figure as published in the source table
// (units of one thousand residents). It only exists at ingestion.
type Thousands float64

// Headcount is an absolute population count.
type Headcount int64

// Headcount scales a published figure to absolute residents. This is the
// only conversion between the two units.
func (t Thousands) Headcount() Headcount {
	return Headcount(math.Round(float64(t) * 1000))
}

// Millions returns the count in millions of residents.
func (h Headcount) Millions() float64 {
	return float64(h) / 1_000_000
}

// DistrictPopulation is one row of the population table, already scaled to
// absolute residents. Population is nil when the source value was not numeric.
type DistrictPopulation struct {
	District   string     `json:"district"`
	Population *Headcount `json:"population"`
}

// HeadcountPtr returns a pointer to h.
func HeadcountPtr(h Headcount) *Headcount {
	return &h
}
