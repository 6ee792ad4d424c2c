package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(0, 0)
	require.Equal(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)

	offset, limit = Calculate(3, 10)
	require.Equal(t, 20, offset)
	require.Equal(t, 10, limit)

	_, limit = Calculate(1, 1000)
	require.Equal(t, MaxPageSize, limit)
}

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 7, ParseIntDefault("", 7))
	require.Equal(t, 7, ParseIntDefault("x", 7))
	require.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewMeta(t *testing.T) {
	offset, limit := Calculate(2, 10)
	m := NewMeta(2, offset, limit, 25)
	require.Equal(t, int64(3), m.TotalPages)
	require.True(t, m.HasPrev)
	require.True(t, m.HasNext)

	offset, limit = Calculate(3, 10)
	m = NewMeta(3, offset, limit, 25)
	require.False(t, m.HasNext)
}
