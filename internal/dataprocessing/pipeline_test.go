package dataprocessing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "epicli/internal/errors"
	"epicli/pkg/contracts/domain"
)

func TestLoadAndClean_FullRun(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
		"USA,United States,2021-01-02,,15,,6,1,,1100,900,0.35",
		"USA,United States,2021-01-03,300,30,,7,1,,1200,1000,0.4",
		"IND,India,2021-01-01,200,20,,8,2,,2000,1500,0.2",
	)

	p := NewPipeline(slog.Default())
	result, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"United States", "India"},
	})
	require.NoError(t, err)

	require.Len(t, result.Series, 2)
	usa := result.Series["United States"]
	require.Equal(t, 3, usa.Len())

	// Interior gap filled: 100 on Jan 1, 300 on Jan 3 → 200 on Jan 2.
	require.NotNil(t, usa.Observations[1].TotalCases)
	assert.Equal(t, 200.0, *usa.Observations[1].TotalCases)

	// Derived metric built from the interpolated value.
	require.NotNil(t, usa.Observations[1].DailyNewCases)
	assert.Equal(t, 100.0, *usa.Observations[1].DailyNewCases)

	// Combined output: requested entity order, then date ascending.
	require.Len(t, result.Combined, 4)
	assert.Equal(t, "United States", result.Combined[0].Entity)
	assert.Equal(t, "India", result.Combined[3].Entity)
}

func TestLoadAndClean_EmptySelection(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
	)

	p := NewPipeline(nil)
	_, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"Atlantis"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptySelection))
}

func TestLoadAndClean_EntityOutOfRangeYieldsEmptySeries(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
	)

	p := NewPipeline(nil)
	result, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"United States"},
		DateRange: &domain.DateRange{
			Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err, "entity present but out of range is not an empty selection")

	require.Contains(t, result.Series, "United States")
	assert.Equal(t, 0, result.Series["United States"].Len())
	assert.Empty(t, result.Combined)
}

func TestLoadAndClean_DroppedDateRowsCounted(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
		"USA,United States,not-a-date,150,15,,6,1,,1100,900,0.35",
		"USA,United States,2021-01-03,300,30,,7,1,,1200,1000,0.4",
	)

	p := NewPipeline(nil)
	result, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"United States"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DroppedDates)
	assert.Equal(t, 2, result.Series["United States"].Len())
}

func TestLoadAndClean_DuplicateDatesKeepLast(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
		"USA,United States,2021-01-01,120,12,,5,1,,1000,800,0.3",
	)

	p := NewPipeline(nil)
	result, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"United States"},
	})
	require.NoError(t, err)

	s := result.Series["United States"]
	require.Equal(t, 1, s.Len())
	assert.Equal(t, 120.0, *s.Observations[0].TotalCases)
}

func TestLoadAndClean_DatesStrictlyIncreasing(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-03,300,30,,7,1,,1200,1000,0.4",
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
		"USA,United States,2021-01-02,200,20,,6,1,,1100,900,0.35",
		"USA,United States,2021-01-02,210,21,,6,1,,1100,900,0.35",
	)

	p := NewPipeline(nil)
	result, err := p.LoadAndClean(context.Background(), path, Options{
		Entities: []string{"United States"},
	})
	require.NoError(t, err)

	s := result.Series["United States"]
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Observations[i-1].Date.Before(s.Observations[i].Date))
	}
}

func TestLoadAndClean_Idempotent(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
		"USA,United States,2021-01-02,,15,,6,1,,1100,900,0.35",
		"USA,United States,2021-01-03,300,30,,7,1,,1200,1000,0.4",
		"IND,India,2021-01-01,200,20,,8,2,,2000,1500,0.2",
	)

	p := NewPipeline(nil)
	opts := Options{Entities: []string{"United States", "India"}}

	first, err := p.LoadAndClean(context.Background(), path, opts)
	require.NoError(t, err)
	second, err := p.LoadAndClean(context.Background(), path, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadAndClean_OptionValidation(t *testing.T) {
	path := writeTestCSV(t,
		"USA,United States,2021-01-01,100,10,,5,1,,1000,800,0.3",
	)

	p := NewPipeline(nil)

	tests := []struct {
		name string
		opts Options
	}{
		{"no entities", Options{}},
		{"empty entity name", Options{Entities: []string{""}}},
		{"duplicate entities", Options{Entities: []string{"India", "India"}}},
		{
			"inverted date range",
			Options{
				Entities: []string{"United States"},
				DateRange: &domain.DateRange{
					Start: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.LoadAndClean(context.Background(), path, tt.opts)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}
