package monitor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	w := NewWindow(3)
	require.Equal(t, Summary{}, w.Summary())

	w.Add(5)
	require.Equal(t, Summary{Count: 1, Mean: 5, Min: 5, Max: 5}, w.Summary())

	w.Add(1)
	w.Add(3)
	s := w.Summary()
	require.Equal(t, 3, s.Count)
	require.InDelta(t, 3, s.Mean, 1e-9)
	require.InDelta(t, 2, s.StdDev, 1e-9)
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 5.0, s.Max)

	// evicts 5
	w.Add(8)
	s = w.Summary()
	require.Equal(t, 3, s.Count)
	require.InDelta(t, 4, s.Mean, 1e-9)
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 8.0, s.Max)
}

func TestWindowSizeDefault(t *testing.T) {
	for _, size := range []int{0, -1} {
		w := NewWindow(size)
		require.Equal(t, DefaultWindowSize, w.Size)
		w.Add(2)
		require.Equal(t, 1, w.Summary().Count)
	}
	w := &Window{}
	w.Add(4)
	require.Equal(t, Summary{Count: 1, Mean: 4, Min: 4, Max: 4}, w.Summary())
}

func TestWindowSkipsNotFinite(t *testing.T) {
	w := NewWindow(3)
	w.Add(math.NaN())
	w.Add(math.Inf(1))
	w.Add(math.Inf(-1))
	require.Equal(t, Summary{}, w.Summary())
	w.Add(6)
	require.Equal(t, Summary{Count: 1, Mean: 6, Min: 6, Max: 6}, w.Summary())
}
