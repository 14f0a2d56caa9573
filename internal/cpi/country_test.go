package cpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCountryStructure(t *testing.T) {
	b1 := constantVar(t, jan2010, 12, 1)
	b2 := constantVar(t, jan2010.AddDate(1, 0, 0), 6, 2, 0)

	t.Run("consecutive", func(t *testing.T) {
		cs, err := NewCountryStructure("GT", b1, b2)
		require.NoError(t, err)
		assert.Equal(t, 2, cs.Eras())
		assert.Equal(t, 18, cs.Periods())
		assert.Equal(t, []int{12, 6}, cs.PeriodsPerBase())

		off, n := cs.Span(1)
		assert.Equal(t, 12, off)
		assert.Equal(t, 6, n)

		dates := cs.Dates()
		require.Len(t, dates, 18)
		assert.Equal(t, jan2010, dates[0])
		assert.Equal(t, jan2010.AddDate(1, 5, 0), dates[17])
	})

	t.Run("gap", func(t *testing.T) {
		b3 := constantVar(t, jan2010.AddDate(1, 1, 0), 6, 0)
		_, err := NewCountryStructure("GT", b1, b3)
		assert.ErrorIs(t, err, ErrNonConsecutiveBases)
	})

	t.Run("overlap", func(t *testing.T) {
		_, err := NewCountryStructure("GT", b1, b1)
		assert.ErrorIs(t, err, ErrNonConsecutiveBases)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewCountryStructure("GT")
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestCountryStructureHeadline(t *testing.T) {
	b1 := constantVar(t, jan2010, 2, 10)
	b2 := constantVar(t, jan2010.AddDate(0, 2, 0), 2, 0, 0)
	cs, err := NewCountryStructure("GT", b1, b2)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{110, 121, 121, 121}, cs.Headline(), 1e-9)
}
