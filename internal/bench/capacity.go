// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"

	"github.com/ironcore-dev/board-bist/cmdutils"
)

// Capacity queries space on a device with df.
type Capacity struct {
	exec utilexec.Interface
	log  logr.Logger
}

func NewCapacity(log logr.Logger, exec utilexec.Interface) *Capacity {
	return &Capacity{exec: exec, log: log}
}

// SizeMiB returns the size in MiB df reports in its 1K-blocks column for path.
// For a device node that is not mounted df describes the filesystem holding the
// node (usually devtmpfs), not the medium behind it.
func (c *Capacity) SizeMiB(ctx context.Context, path string) (float64, error) {
	out, err := cmdutils.Run(ctx, c.exec, "df", "-k", "-P", path)
	if err != nil {
		return 0, err
	}
	lines := cmdutils.Lines(out.Stdout)
	if len(lines) < 2 {
		return 0, fmt.Errorf("%w: df printed no filesystem line for %s", ErrParse, path)
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: unexpected df line %q", ErrParse, lines[1])
	}
	blocks, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: df block count %q: %w", ErrParse, fields[1], err)
	}
	return float64(blocks) / 1024, nil
}

// Check fails closed: any error while querying counts as insufficient space.
func (c *Capacity) Check(ctx context.Context, path string, requiredBytes int64) error {
	size, err := c.SizeMiB(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: error retrieving available storage space on %s: %w", ErrCapacity, path, err)
	}
	c.log.Info("Available disk space", "path", path, "MiB", fmt.Sprintf("%.2f", size))

	required := float64(requiredBytes) / humanize.MiByte
	if size < required {
		return fmt.Errorf("%w on %s: %.2fMiB available, minimum free space of %s is required to execute the test",
			ErrCapacity, path, size, humanize.IBytes(uint64(requiredBytes)))
	}
	return nil
}
