package dataprocessing

import (
	"epicli/pkg/contracts/domain"
)

// ComputeDerived attaches the derived metric columns to a cleaned series.
// Derived values come from already-cleaned columns only, never from raw
// gapped data, so this must run after interpolation.
func ComputeDerived(s *domain.Series) {
	for i := range s.Observations {
		obs := &s.Observations[i]

		obs.DailyNewCases = dailyNewCases(s.Observations, i)
		obs.VaxRatio = ratio(obs.PeopleVaccinated, obs.TotalCases, 1)
		obs.DeathRate = ratio(obs.TotalDeaths, obs.TotalCases, 100)
	}
}

// dailyNewCases is the day-over-day difference of cumulative total cases.
// Missing when either side is missing. Negative differences come from
// upstream data revisions and are clamped to missing rather than reported
// as negative counts.
func dailyNewCases(observations []domain.Observation, i int) *float64 {
	if i == 0 {
		return nil
	}
	curr := observations[i].TotalCases
	prev := observations[i-1].TotalCases
	if curr == nil || prev == nil {
		return nil
	}
	diff := *curr - *prev
	if diff < 0 {
		return nil
	}
	return &diff
}

// ratio divides numerator by denominator and applies a scale factor.
// Missing when either operand is missing or the denominator is zero.
func ratio(numerator, denominator *float64, scale float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	v := (*numerator / *denominator) * scale
	return &v
}
