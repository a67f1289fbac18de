package monitor

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the samples in a Window.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Window keeps the latest Size samples.
type Window struct {
	Size int

	samples []float64
	next    int
}

// NewWindow creates a Window of size samples, DefaultWindowSize if size
// isn't positive.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{Size: size, samples: make([]float64, 0, size)}
}

// Add adds a sample, evicting the oldest one when full. NaN and ±Inf are
// not samples and are ignored.
func (w *Window) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if w.Size <= 0 {
		w.Size = DefaultWindowSize
	}
	if len(w.samples) < w.Size {
		w.samples = append(w.samples, v)
		return
	}
	w.samples[w.next] = v
	w.next = (w.next + 1) % w.Size
}

// Summary computes statistics of the samples. The zero Summary is
// returned when empty.
func (w *Window) Summary() Summary {
	if len(w.samples) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(w.samples),
		Min:   floats.Min(w.samples),
		Max:   floats.Max(w.samples),
	}
	if s.Count == 1 {
		s.Mean = w.samples[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(w.samples, nil)
	return s
}
