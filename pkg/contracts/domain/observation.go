package domain

import (
	"time"
)

// Observation represents one entity's epidemiological measurements for one day.
// Numeric fields use *float64 so that a missing source value stays
// distinguishable from zero through cleaning and export.
type Observation struct {
	Entity string    `json:"entity" validate:"required"`
	Date   time.Time `json:"date" validate:"required"`

	TotalCases                 *float64 `json:"total_cases,omitempty"`
	NewCases                   *float64 `json:"new_cases,omitempty"`
	NewCasesSmoothed           *float64 `json:"new_cases_smoothed,omitempty"`
	TotalDeaths                *float64 `json:"total_deaths,omitempty"`
	NewDeaths                  *float64 `json:"new_deaths,omitempty"`
	NewDeathsSmoothed          *float64 `json:"new_deaths_smoothed,omitempty"`
	TotalVaccinations          *float64 `json:"total_vaccinations,omitempty"`
	PeopleVaccinated           *float64 `json:"people_vaccinated,omitempty"`
	PeopleVaccinatedPerHundred *float64 `json:"people_vaccinated_per_hundred,omitempty"`

	// Derived metrics, computed from cleaned columns only.
	DailyNewCases *float64 `json:"daily_new_cases,omitempty"`
	VaxRatio      *float64 `json:"vax_ratio,omitempty"`
	DeathRate     *float64 `json:"death_rate,omitempty"`

	// Extra holds source columns outside the known schema. They are carried
	// through untouched and reappear in the combined export.
	Extra map[string]string `json:"extra,omitempty"`
}

// Series is the cleaned time series for a single entity, ordered by date
// ascending with no duplicate dates.
type Series struct {
	Entity       string        `json:"entity"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// DateRange is an inclusive date interval used to restrict a series.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end" validate:"gtefield=Start"`
}

// Contains reports whether t falls inside the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Source column names for the known schema.
const (
	ColumnEntity                     = "location"
	ColumnDate                       = "date"
	ColumnTotalCases                 = "total_cases"
	ColumnNewCases                   = "new_cases"
	ColumnNewCasesSmoothed           = "new_cases_smoothed"
	ColumnTotalDeaths                = "total_deaths"
	ColumnNewDeaths                  = "new_deaths"
	ColumnNewDeathsSmoothed          = "new_deaths_smoothed"
	ColumnTotalVaccinations          = "total_vaccinations"
	ColumnPeopleVaccinated           = "people_vaccinated"
	ColumnPeopleVaccinatedPerHundred = "people_vaccinated_per_hundred"
)

// Derived column names used in exports.
const (
	ColumnDailyNewCases = "daily_new_cases"
	ColumnVaxRatio      = "vax_ratio"
	ColumnDeathRate     = "death_rate"
)

// NumericColumn describes one numeric observation column: its source header,
// whether the schema check requires it, and typed access to the field it
// populates. The cleaner iterates this table to interpolate every column
// independently.
type NumericColumn struct {
	Name     string
	Required bool
	Get      func(o *Observation) *float64
	Set      func(o *Observation, v *float64)
}

// NumericColumns returns the known numeric columns in export order.
// The smoothed variants are optional: older dataset snapshots omit them.
func NumericColumns() []NumericColumn {
	return []NumericColumn{
		{
			Name:     ColumnTotalCases,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.TotalCases },
			Set:      func(o *Observation, v *float64) { o.TotalCases = v },
		},
		{
			Name:     ColumnNewCases,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.NewCases },
			Set:      func(o *Observation, v *float64) { o.NewCases = v },
		},
		{
			Name:     ColumnNewCasesSmoothed,
			Required: false,
			Get:      func(o *Observation) *float64 { return o.NewCasesSmoothed },
			Set:      func(o *Observation, v *float64) { o.NewCasesSmoothed = v },
		},
		{
			Name:     ColumnTotalDeaths,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.TotalDeaths },
			Set:      func(o *Observation, v *float64) { o.TotalDeaths = v },
		},
		{
			Name:     ColumnNewDeaths,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.NewDeaths },
			Set:      func(o *Observation, v *float64) { o.NewDeaths = v },
		},
		{
			Name:     ColumnNewDeathsSmoothed,
			Required: false,
			Get:      func(o *Observation) *float64 { return o.NewDeathsSmoothed },
			Set:      func(o *Observation, v *float64) { o.NewDeathsSmoothed = v },
		},
		{
			Name:     ColumnTotalVaccinations,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.TotalVaccinations },
			Set:      func(o *Observation, v *float64) { o.TotalVaccinations = v },
		},
		{
			Name:     ColumnPeopleVaccinated,
			Required: true,
			Get:      func(o *Observation) *float64 { return o.PeopleVaccinated },
			Set:      func(o *Observation, v *float64) { o.PeopleVaccinated = v },
		},
		{
			Name:     ColumnPeopleVaccinatedPerHundred,
			Required: false,
			Get:      func(o *Observation) *float64 { return o.PeopleVaccinatedPerHundred },
			Set:      func(o *Observation, v *float64) { o.PeopleVaccinatedPerHundred = v },
		},
	}
}

// DerivedColumns returns the derived metric columns in export order.
func DerivedColumns() []NumericColumn {
	return []NumericColumn{
		{
			Name: ColumnDailyNewCases,
			Get:  func(o *Observation) *float64 { return o.DailyNewCases },
			Set:  func(o *Observation, v *float64) { o.DailyNewCases = v },
		},
		{
			Name: ColumnVaxRatio,
			Get:  func(o *Observation) *float64 { return o.VaxRatio },
			Set:  func(o *Observation, v *float64) { o.VaxRatio = v },
		},
		{
			Name: ColumnDeathRate,
			Get:  func(o *Observation) *float64 { return o.DeathRate },
			Set:  func(o *Observation, v *float64) { o.DeathRate = v },
		},
	}
}

// Float returns a pointer to v, for building observations in place.
func Float(v float64) *float64 {
	return &v
}
