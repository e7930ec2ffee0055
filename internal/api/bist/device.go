// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bist

// HardwarePath is an ordered list of topology tokens, e.g. ["1-1.1", "2-1.1"] for a USB
// port or ["mmc0:"] for an MMC slot. Earlier tokens take priority.
type HardwarePath []string

// Bus identifies the kind of bus a topology token lives on.
type Bus string

const (
	BusUSB Bus = "usb"
	BusMMC Bus = "mmc"
	BusMTD Bus = "mtd"
)

// ResolvedDevice is the kernel device found behind a physical port.
type ResolvedDevice struct {
	// BlockDevice is the kernel name, e.g. sda, mmcblk1 or mtd12.
	BlockDevice string `json:"blockDevice"`
	// DevicePath is the node the benchmark runs against. It is the partition when one was selected.
	DevicePath string `json:"devicePath"`
	// PartitionPath is set when a partition was preferred over the raw device.
	PartitionPath string     `json:"partitionPath,omitempty"`
	SpeedClass    SpeedClass `json:"speedClass"`
	Bus           Bus        `json:"bus"`
	// Token is the topology token that resolved, Index its position in the HardwarePath.
	Token string `json:"token,omitempty"`
	Index int    `json:"index"`
	// SizeBytes is only known for MTD partitions.
	SizeBytes uint64 `json:"sizeBytes,omitempty"`
	// EraseSize is the erase block size of an MTD partition.
	EraseSize uint64 `json:"eraseSize,omitempty"`

	Disk *DiskInfo `json:"disk,omitempty"`
}

// DiskInfo describes the physical medium behind a block device.
type DiskInfo struct {
	Vendor    string `json:"vendor,omitempty"`
	Model     string `json:"model,omitempty"`
	Serial    string `json:"serial,omitempty"`
	Removable bool   `json:"removable"`
	SizeBytes uint64 `json:"sizeBytes"`
	BusPath   string `json:"busPath,omitempty"`
}
