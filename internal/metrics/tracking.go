// Package metrics provides step-response figures computed over a run.
package metrics

import (
	"math"

	"github.com/san-kum/cruisesim/internal/cruise"
)

// TrackingRMS is the root-mean-square tracking error over the run.
type TrackingRMS struct {
	sumSq   float64
	samples int
}

func NewTrackingRMS() *TrackingRMS {
	return &TrackingRMS{}
}

func (m *TrackingRMS) Name() string { return "tracking_rms" }

func (m *TrackingRMS) Observe(s cruise.Sample) {
	e := s.Ref - s.Speed
	m.sumSq += e * e
	m.samples++
}

func (m *TrackingRMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingRMS) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// MaxDip is the largest shortfall of measured speed below the reference.
type MaxDip struct {
	worst float64
}

func NewMaxDip() *MaxDip { return &MaxDip{} }

func (m *MaxDip) Name() string { return "max_dip" }

func (m *MaxDip) Observe(s cruise.Sample) {
	if d := s.Ref - s.Speed; d > m.worst {
		m.worst = d
	}
}

func (m *MaxDip) Value() float64 { return m.worst }

func (m *MaxDip) Reset() { m.worst = 0 }

// SettlingTime is the first time after which |ref - speed| stays within
// Tol for the rest of the run. Value reports -1 when the loop never
// settles.
type SettlingTime struct {
	Tol       float64
	settledAt float64
	settled   bool
}

func NewSettlingTime(tol float64) *SettlingTime {
	return &SettlingTime{Tol: tol}
}

func (m *SettlingTime) Name() string { return "settling_time" }

func (m *SettlingTime) Observe(s cruise.Sample) {
	if math.Abs(s.Ref-s.Speed) > m.Tol {
		m.settled = false
		return
	}
	if !m.settled {
		m.settled = true
		m.settledAt = s.Time
	}
}

func (m *SettlingTime) Value() float64 {
	if !m.settled {
		return -1
	}
	return m.settledAt
}

func (m *SettlingTime) Reset() {
	m.settledAt = 0
	m.settled = false
}
