package dataprocessing

import (
	"sort"

	"epicli/pkg/contracts/domain"
)

// Cleaner turns raw observations into per-entity cleaned series: range
// filtering, date ordering, duplicate resolution, and gap interpolation.
type Cleaner struct{}

// NewCleaner creates a new cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// BuildSeries produces one cleaned series per entity present in the input.
// Observations outside dateRange are discarded first. Within one entity,
// duplicate dates resolve to the last occurrence in source order, dates sort
// ascending, and interior gaps in every numeric column are filled by linear
// interpolation. Leading and trailing gaps stay missing.
func (c *Cleaner) BuildSeries(observations []domain.Observation, dateRange *domain.DateRange) map[string]*domain.Series {
	grouped := make(map[string][]domain.Observation)
	for _, obs := range observations {
		if dateRange != nil && !dateRange.Contains(obs.Date) {
			continue
		}
		grouped[obs.Entity] = append(grouped[obs.Entity], obs)
	}

	series := make(map[string]*domain.Series, len(grouped))
	for entity, obs := range grouped {
		s := &domain.Series{
			Entity:       entity,
			Observations: c.dedupeAndSort(obs),
		}
		c.interpolate(s)
		series[entity] = s
	}
	return series
}

// dedupeAndSort resolves duplicate dates keep-last and orders by date
// ascending. Input order is source order, so a later duplicate overwrites an
// earlier one.
func (c *Cleaner) dedupeAndSort(observations []domain.Observation) []domain.Observation {
	byDate := make(map[int64]domain.Observation, len(observations))
	for _, obs := range observations {
		byDate[obs.Date.Unix()] = obs
	}

	result := make([]domain.Observation, 0, len(byDate))
	for _, obs := range byDate {
		result = append(result, obs)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// interpolate fills interior missing values of every numeric column
// independently, linearly between the nearest known neighbors by date.
func (c *Cleaner) interpolate(s *domain.Series) {
	for _, col := range domain.NumericColumns() {
		c.interpolateColumn(s.Observations, col)
	}
}

func (c *Cleaner) interpolateColumn(observations []domain.Observation, col domain.NumericColumn) {
	prev := -1 // index of the last known value
	for i := range observations {
		if col.Get(&observations[i]) == nil {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			c.fillGap(observations, col, prev, i)
		}
		prev = i
	}
}

// fillGap interpolates the missing points strictly between the known values
// at indices left and right, weighting by date distance so uneven calendar
// gaps interpolate correctly.
func (c *Cleaner) fillGap(observations []domain.Observation, col domain.NumericColumn, left, right int) {
	leftVal := *col.Get(&observations[left])
	rightVal := *col.Get(&observations[right])
	span := observations[right].Date.Sub(observations[left].Date).Hours()
	if span <= 0 {
		return
	}

	for i := left + 1; i < right; i++ {
		elapsed := observations[i].Date.Sub(observations[left].Date).Hours()
		v := leftVal + (rightVal-leftVal)*(elapsed/span)
		col.Set(&observations[i], &v)
	}
}
