// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// RateUnit is the unit a threshold is expressed in.
type RateUnit string

const (
	UnitMBps RateUnit = "MB/s"
	UnitKBps RateUnit = "KB/s"
)

// Of converts t into the unit.
func (u RateUnit) Of(t Throughput) float64 {
	if u == UnitKBps {
		return t.KBps()
	}
	return t.MBps()
}

// Rate builds a Throughput from a value in the unit.
func (u RateUnit) Rate(v float64) Throughput {
	if u == UnitKBps {
		return Throughput(v * 1e3)
	}
	return Throughput(v * 1e6)
}

// Threshold is the minimum acceptable rate in one direction.
type Threshold struct {
	Min  float64  `json:"min"`
	Unit RateUnit `json:"unit"`
}

func (t Threshold) String() string {
	return fmt.Sprintf("%g %s", t.Min, t.Unit)
}

// Thresholds holds the minimum rates of a speed class.
type Thresholds struct {
	Read  Threshold `json:"read"`
	Write Threshold `json:"write"`
}

// For returns the threshold of direction d.
func (t Thresholds) For(d bist.Direction) Threshold {
	if d == bist.DirectionWrite {
		return t.Write
	}
	return t.Read
}

func mbps(v float64) Threshold { return Threshold{Min: v, Unit: UnitMBps} }

func kbps(v float64) Threshold { return Threshold{Min: v, Unit: UnitKBps} }

// thresholds are the minimum rates per speed class. QSPI write is rated in KB/s.
var thresholds = map[bist.SpeedClass]Thresholds{
	bist.SpeedClassSDC:       {Read: mbps(6), Write: mbps(2)},
	bist.SpeedClassSDUHS:     {Read: mbps(12), Write: mbps(6)},
	bist.SpeedClassSDGeneric: {Read: mbps(6), Write: mbps(2)},
	bist.SpeedClassUSB2:      {Read: mbps(9), Write: mbps(2)},
	bist.SpeedClassUSB3:      {Read: mbps(80), Write: mbps(8)},
	bist.SpeedClassQSPI:      {Read: mbps(9), Write: kbps(285)},
}

// ThresholdsFor returns the thresholds of class.
func ThresholdsFor(class bist.SpeedClass) (Thresholds, bool) {
	t, ok := thresholds[class]
	return t, ok
}

// Classify passes when the measured rate is at or above the minimum of class in
// direction d. A missing measurement always fails.
func Classify(class bist.SpeedClass, d bist.Direction, measured *Throughput) error {
	t, ok := ThresholdsFor(class)
	if !ok {
		return fmt.Errorf("%w: no thresholds known for speed class %s", ErrClassification, class)
	}
	if measured == nil {
		return fmt.Errorf("%w: %s speed was not measured", ErrClassification, d)
	}

	th := t.For(d)
	if value := th.Unit.Of(*measured); value < th.Min {
		return fmt.Errorf("%w: measured %s speed %.2f %s, minimum expected for %s devices is %s",
			ErrClassification, d, value, th.Unit, class.Description(), th)
	}
	return nil
}
