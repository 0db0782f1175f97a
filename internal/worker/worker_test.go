package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsTouchedSingleMonth(t *testing.T) {
	meses, err := MonthsTouched("2024-02-01", "2024-02-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02"}, meses)
}

func TestMonthsTouchedAcrossMonths(t *testing.T) {
	meses, err := MonthsTouched("2024-01-28", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, meses)
}

func TestMonthsTouchedAcrossYears(t *testing.T) {
	meses, err := MonthsTouched("2023-12-30", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12", "2024-01"}, meses)
}

func TestMonthsTouchedInvalidDates(t *testing.T) {
	_, err := MonthsTouched("bad", "2024-01-02")
	assert.Error(t, err)

	_, err = MonthsTouched("2024-01-02", "bad")
	assert.Error(t, err)
}
