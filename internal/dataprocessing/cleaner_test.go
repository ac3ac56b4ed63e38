package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func obsWithCases(entity string, date time.Time, cases *float64) domain.Observation {
	return domain.Observation{Entity: entity, Date: date, TotalCases: cases}
}

func TestBuildSeries_SortsByDate(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("India", day(3), domain.Float(300)),
		obsWithCases("India", day(1), domain.Float(100)),
		obsWithCases("India", day(2), domain.Float(200)),
	}, nil)

	require.Contains(t, series, "India")
	s := series["India"]
	require.Equal(t, 3, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Observations[i-1].Date.Before(s.Observations[i].Date),
			"dates must be strictly increasing")
	}
}

func TestBuildSeries_DuplicateDatesKeepLast(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("India", day(1), domain.Float(100)),
		obsWithCases("India", day(1), domain.Float(150)),
	}, nil)

	s := series["India"]
	require.Equal(t, 1, s.Len())
	require.NotNil(t, s.Observations[0].TotalCases)
	assert.Equal(t, 150.0, *s.Observations[0].TotalCases)
}

func TestBuildSeries_DateRangeFilter(t *testing.T) {
	cleaner := NewCleaner()
	dateRange := &domain.DateRange{Start: day(2), End: day(3)}

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("India", day(1), domain.Float(100)),
		obsWithCases("India", day(2), domain.Float(200)),
		obsWithCases("India", day(3), domain.Float(300)),
		obsWithCases("India", day(4), domain.Float(400)),
	}, dateRange)

	s := series["India"]
	require.Equal(t, 2, s.Len())
	assert.Equal(t, day(2), s.Observations[0].Date)
	assert.Equal(t, day(3), s.Observations[1].Date)
}

func TestBuildSeries_InterpolatesInteriorGap(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("United States", day(1), domain.Float(100)),
		obsWithCases("United States", day(2), nil),
		obsWithCases("United States", day(3), domain.Float(300)),
	}, nil)

	s := series["United States"]
	require.Equal(t, 3, s.Len())
	require.NotNil(t, s.Observations[1].TotalCases)
	assert.Equal(t, 200.0, *s.Observations[1].TotalCases)
}

func TestBuildSeries_InterpolationWeightsByDateDistance(t *testing.T) {
	cleaner := NewCleaner()

	// Known at day 1 and day 5; missing row at day 2 sits a quarter of the
	// way through the gap.
	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("India", day(1), domain.Float(0)),
		obsWithCases("India", day(2), nil),
		obsWithCases("India", day(5), domain.Float(400)),
	}, nil)

	s := series["India"]
	require.Equal(t, 3, s.Len())
	require.NotNil(t, s.Observations[1].TotalCases)
	assert.InDelta(t, 100.0, *s.Observations[1].TotalCases, 1e-9)
}

func TestBuildSeries_InterpolatedValuesLieBetweenNeighbors(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("India", day(1), domain.Float(50)),
		obsWithCases("India", day(2), nil),
		obsWithCases("India", day(3), nil),
		obsWithCases("India", day(4), nil),
		obsWithCases("India", day(5), domain.Float(250)),
	}, nil)

	s := series["India"]
	for i := 1; i <= 3; i++ {
		v := s.Observations[i].TotalCases
		require.NotNil(t, v)
		assert.GreaterOrEqual(t, *v, 50.0)
		assert.LessOrEqual(t, *v, 250.0)
	}
	// Monotone between the bounding values for a linear fill.
	assert.Less(t, *s.Observations[1].TotalCases, *s.Observations[2].TotalCases)
	assert.Less(t, *s.Observations[2].TotalCases, *s.Observations[3].TotalCases)
}

func TestBuildSeries_NoExtrapolation(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		obsWithCases("Canada", day(1), nil),
		obsWithCases("Canada", day(2), domain.Float(100)),
		obsWithCases("Canada", day(3), nil),
	}, nil)

	s := series["Canada"]
	assert.Nil(t, s.Observations[0].TotalCases, "leading gap must stay missing")
	assert.Nil(t, s.Observations[2].TotalCases, "trailing gap must stay missing")
}

func TestBuildSeries_ColumnsInterpolateIndependently(t *testing.T) {
	cleaner := NewCleaner()

	series := cleaner.BuildSeries([]domain.Observation{
		{Entity: "India", Date: day(1), TotalCases: domain.Float(100), TotalDeaths: nil},
		{Entity: "India", Date: day(2), TotalCases: nil, TotalDeaths: domain.Float(10)},
		{Entity: "India", Date: day(3), TotalCases: domain.Float(300), TotalDeaths: domain.Float(30)},
	}, nil)

	s := series["India"]
	require.NotNil(t, s.Observations[1].TotalCases)
	assert.Equal(t, 200.0, *s.Observations[1].TotalCases)
	// Deaths had no left neighbor at day 1; leading gap stays missing.
	assert.Nil(t, s.Observations[0].TotalDeaths)
}
