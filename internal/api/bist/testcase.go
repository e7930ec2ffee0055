// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bist

// Medium is the kind of storage a test case exercises.
type Medium string

const (
	// MediumDisk is a block device behind a USB or MMC port, tested through a mounted filesystem.
	MediumDisk Medium = "disk"
	// MediumMTD is a raw flash partition addressed by offset and length.
	MediumMTD Medium = "mtd"
)

// TestCase is one benchmark invocation as configured for a board.
type TestCase struct {
	Label        string       `json:"label"`
	Port         string       `json:"port"`
	Medium       Medium       `json:"medium"`
	HardwarePath HardwarePath `json:"hardwarePath,omitempty"`
	// Partition is the MTD partition name for MediumMTD.
	Partition string  `json:"partition,omitempty"`
	Request   Request `json:"request"`
}
