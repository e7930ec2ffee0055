// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/bench"
)

// ResultCollector exposes the latest result of every test case.
type ResultCollector struct {
	board        string
	lastResults  map[string]bist.Result
	mux          sync.RWMutex
	passedDesc   *prometheus.Desc
	rateDesc     *prometheus.Desc
	durationDesc *prometheus.Desc
	minRateDesc  *prometheus.Desc
}

// NewResultCollector creates a collector labelling every series with board.
func NewResultCollector(board string) *ResultCollector {
	constLabels := prometheus.Labels{"board": board}
	return &ResultCollector{
		board:       board,
		lastResults: make(map[string]bist.Result),
		passedDesc: prometheus.NewDesc(
			"bist_storage_test_passed",
			"Whether the last run of the storage test passed (1) or failed (0)",
			[]string{"label", "port", "mode", "failed_stage"},
			constLabels,
		),
		rateDesc: prometheus.NewDesc(
			"bist_storage_throughput_bytes_per_second",
			"Throughput in bytes per second measured by the last run of the storage test",
			[]string{"label", "port", "speed_class", "device", "direction"},
			constLabels,
		),
		durationDesc: prometheus.NewDesc(
			"bist_storage_test_duration_seconds",
			"Wall clock time of the last run of the storage test",
			[]string{"label", "port"},
			constLabels,
		),
		minRateDesc: prometheus.NewDesc(
			"bist_storage_min_throughput_bytes_per_second",
			"Minimum throughput in bytes per second a device of the speed class must reach",
			[]string{"speed_class", "direction"},
			nil,
		),
	}
}

// Observe records res, replacing an earlier result with the same label.
func (c *ResultCollector) Observe(res bist.Result) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.lastResults[res.Label] = res
}

func (c *ResultCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.passedDesc
	ch <- c.rateDesc
	ch <- c.durationDesc
	ch <- c.minRateDesc
}

func (c *ResultCollector) Collect(ch chan<- prometheus.Metric) {
	c.mux.RLock()
	defer c.mux.RUnlock()

	for _, res := range c.lastResults {
		passed := 0.0
		if res.Passed {
			passed = 1
		}
		ch <- prometheus.MustNewConstMetric(
			c.passedDesc,
			prometheus.GaugeValue,
			passed,
			res.Label,
			res.Port,
			string(res.Mode),
			string(res.FailedStage),
		)
		ch <- prometheus.MustNewConstMetric(
			c.durationDesc,
			prometheus.GaugeValue,
			res.Duration.Seconds(),
			res.Label,
			res.Port,
		)
		if res.Device == nil {
			continue
		}
		for d, v := range map[bist.Direction]*float64{
			bist.DirectionRead:  res.ReadMBps,
			bist.DirectionWrite: res.WriteMBps,
		} {
			if v == nil {
				continue
			}
			ch <- prometheus.MustNewConstMetric(
				c.rateDesc,
				prometheus.GaugeValue,
				*v*1e6,
				res.Label,
				res.Port,
				string(res.Device.SpeedClass),
				res.Device.DevicePath,
				string(d),
			)
		}
	}

	for _, class := range bist.SpeedClasses {
		t, ok := bench.ThresholdsFor(class)
		if !ok {
			continue
		}
		for _, d := range []bist.Direction{bist.DirectionRead, bist.DirectionWrite} {
			th := t.For(d)
			ch <- prometheus.MustNewConstMetric(
				c.minRateDesc,
				prometheus.GaugeValue,
				float64(th.Unit.Rate(th.Min)),
				string(class),
				string(d),
			)
		}
	}
}

// WriteTextfile registers c with a private registry and writes its series to
// filename in the node-exporter textfile format.
func (c *ResultCollector) WriteTextfile(filename string) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(filename, reg)
}
