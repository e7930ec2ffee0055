// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"strconv"
	"strings"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// IsSDPort reports whether the port is an SD card slot or SD adapter.
func IsSDPort(port string) bool {
	return strings.Contains(strings.ToUpper(port), "SD")
}

// BusOf returns the bus a topology token belongs to.
func BusOf(token string) bist.Bus {
	if strings.Contains(token, "mmc") {
		return bist.BusMMC
	}
	return bist.BusUSB
}

// SpeedClassFor maps the position of the resolving token to the class the board is
// wired for. The first token of a port is its slower path.
func SpeedClassFor(bus bist.Bus, index int, sdPort bool) bist.SpeedClass {
	switch {
	case sdPort:
		return bist.SpeedClassSDGeneric
	case bus == bist.BusMMC && index == 0:
		return bist.SpeedClassSDC
	case bus == bist.BusMMC:
		return bist.SpeedClassSDUHS
	case index == 0:
		return bist.SpeedClassUSB2
	default:
		return bist.SpeedClassUSB3
	}
}

// PartitionName returns the kernel name of partition n of disk, following the
// kernel convention of a "p" separator for disk names ending in a digit.
func PartitionName(disk string, n int) string {
	if disk == "" {
		return ""
	}
	if last := disk[len(disk)-1]; last >= '0' && last <= '9' {
		return disk + "p" + strconv.Itoa(n)
	}
	return disk + strconv.Itoa(n)
}

// preferredPartition is the ext4 data partition for SD media and the first
// partition for everything else.
func preferredPartition(sdPort bool) int {
	if sdPort {
		return 2
	}
	return 1
}
