// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Throughput is a transfer rate in bytes per second.
type Throughput float64

// MBps returns the rate in MB/s (10^6 bytes per second).
func (t Throughput) MBps() float64 {
	return float64(t) / 1e6
}

// KBps returns the rate in KB/s (10^3 bytes per second).
func (t Throughput) KBps() float64 {
	return float64(t) / 1e3
}

func (t Throughput) String() string {
	if t.MBps() < 1 {
		return fmt.Sprintf("%.1f KB/s", t.KBps())
	}
	return fmt.Sprintf("%.1f MB/s", t.MBps())
}

// ddSummary matches the last line dd prints to stderr, in the coreutils
//
//	134217728 bytes (134 MB, 128 MiB) copied, 10.4852 s, 12.8 MB/s
//
// and the busybox
//
//	134217728 bytes (128.0MB) copied, 10.485200 seconds, 12.2MB/s
//
// flavours.
var ddSummary = regexp.MustCompile(`(\d+) bytes .*copied, ([0-9.]+) s(?:econds)?, ([0-9.]+) ?([kKMGT]?i?B)/s`)

var rateUnits = map[string]float64{
	"B":   1,
	"kB":  1e3,
	"KB":  1e3,
	"MB":  1e6,
	"GB":  1e9,
	"TB":  1e12,
	"KiB": 1 << 10,
	"kiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
}

// ParseTransferRate extracts the rate dd reported. An absent summary is an error,
// never a zero rate.
func ParseTransferRate(output []byte) (Throughput, error) {
	lines := strings.Split(string(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m := ddSummary.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: transfer rate %q: %w", ErrParse, m[3], err)
		}
		factor, ok := rateUnits[m[4]]
		if !ok {
			return 0, fmt.Errorf("%w: unknown transfer rate unit %q", ErrParse, m[4])
		}
		return Throughput(value * factor), nil
	}
	return 0, fmt.Errorf("%w: no transfer summary in dd output", ErrParse)
}
