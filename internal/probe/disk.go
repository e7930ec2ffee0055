// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"

	"github.com/jaypipes/ghw"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

var blockInfo = func() (*ghw.BlockInfo, error) {
	return ghw.Block()
}

// DescribeDisk looks up the inventory data of the disk called name, e.g. sda or mmcblk1.
func DescribeDisk(name string) (*bist.DiskInfo, error) {
	blockStorage, err := blockInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get block devices: %w", err)
	}
	for _, d := range blockStorage.Disks {
		if d.Name != name {
			continue
		}
		return &bist.DiskInfo{
			Vendor:    d.Vendor,
			Model:     d.Model,
			Serial:    d.SerialNumber,
			Removable: d.IsRemovable,
			SizeBytes: d.SizeBytes,
			BusPath:   d.BusPath,
		}, nil
	}
	return nil, fmt.Errorf("block device %s not found in inventory", name)
}
