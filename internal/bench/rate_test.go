// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

var _ = Describe("ParseTransferRate", func() {
	DescribeTable("normalises the reported rate to bytes per second",
		func(output string, expected float64) {
			rate, err := ParseTransferRate([]byte(output))
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(rate)).To(BeNumerically("~", expected, 1e-3))
		},
		Entry("coreutils MB/s",
			"4+0 records in\n4+0 records out\n134217728 bytes (134 MB, 128 MiB) copied, 10.4852 s, 12.8 MB/s\n", 12.8e6),
		Entry("coreutils kB/s",
			"16+0 records in\n16+0 records out\n1048576 bytes (1.0 MB, 1.0 MiB) copied, 3.49 s, 300 kB/s\n", 300e3),
		Entry("coreutils GB/s",
			"134217728 bytes (134 MB, 128 MiB) copied, 0.0652 s, 2.1 GB/s", 2.1e9),
		Entry("coreutils bytes",
			"512 bytes copied, 1 s, 512 B/s", 512.0),
		Entry("busybox",
			"4+0 records in\n4+0 records out\n134217728 bytes (128.0MB) copied, 10.485200 seconds, 12.2MB/s\n", 12.2e6),
		Entry("binary units",
			"134217728 bytes (128.0MiB) copied, 10.0 seconds, 12.8MiB/s", 12.8*(1<<20)),
		Entry("last summary wins",
			"1 bytes copied, 1 s, 1 B/s\n2 bytes copied, 1 s, 2 kB/s\n", 2e3),
	)

	DescribeTable("never yields a zero rate for unusable output",
		func(output string) {
			_, err := ParseTransferRate([]byte(output))
			Expect(err).To(MatchError(ErrParse))
		},
		Entry("empty", ""),
		Entry("records only", "4+0 records in\n4+0 records out\n"),
		Entry("no rate", "134217728 bytes (134 MB, 128 MiB) copied, 10.4852 s, fast"),
		Entry("unknown unit", "134217728 bytes copied, 1 s, 1.0 PB/s"),
	)

	It("formats slow rates in KB/s", func() {
		Expect(Throughput(300e3).String()).To(Equal("300.0 KB/s"))
		Expect(Throughput(12.5e6).String()).To(Equal("12.5 MB/s"))
	})
})

var _ = Describe("Classify", func() {
	rate := func(v float64, unit RateUnit) *Throughput {
		t := unit.Rate(v)
		return &t
	}

	DescribeTable("compares against the minimum of the speed class",
		func(class bist.SpeedClass, d bist.Direction, measured *Throughput, pass bool) {
			err := Classify(class, d, measured)
			if pass {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ErrClassification))
			}
		},
		Entry("USB2 write below minimum", bist.SpeedClassUSB2, bist.DirectionWrite, rate(1.5, UnitMBps), false),
		Entry("USB2 write at minimum", bist.SpeedClassUSB2, bist.DirectionWrite, rate(2, UnitMBps), true),
		Entry("USB2 read at minimum", bist.SpeedClassUSB2, bist.DirectionRead, rate(9, UnitMBps), true),
		Entry("USB3 read below minimum", bist.SpeedClassUSB3, bist.DirectionRead, rate(79.9, UnitMBps), false),
		Entry("USB3 write", bist.SpeedClassUSB3, bist.DirectionWrite, rate(8, UnitMBps), true),
		Entry("SD C-class write", bist.SpeedClassSDC, bist.DirectionWrite, rate(2, UnitMBps), true),
		Entry("SD UHS read below minimum", bist.SpeedClassSDUHS, bist.DirectionRead, rate(11.99, UnitMBps), false),
		Entry("SD generic read", bist.SpeedClassSDGeneric, bist.DirectionRead, rate(6, UnitMBps), true),
		Entry("QSPI write in KB/s", bist.SpeedClassQSPI, bist.DirectionWrite, rate(300, UnitKBps), true),
		Entry("QSPI write at minimum", bist.SpeedClassQSPI, bist.DirectionWrite, rate(285, UnitKBps), true),
		Entry("QSPI write below minimum", bist.SpeedClassQSPI, bist.DirectionWrite, rate(284.9, UnitKBps), false),
		Entry("QSPI read", bist.SpeedClassQSPI, bist.DirectionRead, rate(9.5, UnitMBps), true),
		Entry("missing measurement", bist.SpeedClassUSB3, bist.DirectionRead, nil, false),
		Entry("unknown class", bist.SpeedClass("NVMe"), bist.DirectionRead, rate(1000, UnitMBps), false),
	)

	It("has thresholds for every speed class", func() {
		for _, class := range bist.SpeedClasses {
			_, ok := ThresholdsFor(class)
			Expect(ok).To(BeTrue(), string(class))
		}
	})

	It("names the threshold in the failure", func() {
		err := Classify(bist.SpeedClassUSB2, bist.DirectionWrite, rate(1.5, UnitMBps))
		Expect(err).To(MatchError(ContainSubstring("minimum expected for USB 2.0 devices is 2 MB/s")))
	})
})
