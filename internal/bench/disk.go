// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// testFileName is the file written on a mounted disk.
const testFileName = "test"

// diskMedium is a USB or MMC disk benchmarked through a file on its mounted filesystem.
type diskMedium struct {
	dev        bist.ResolvedDevice
	capacity   *Capacity
	executor   *Executor
	mounter    Mounter
	mountPoint string
}

func mountPointFor(root string, dev bist.ResolvedDevice) string {
	return filepath.Join(root, dev.BlockDevice)
}

// source is the node that gets mounted: the preferred partition when it exists.
func (d *diskMedium) source() string {
	if d.dev.PartitionPath != "" {
		return d.dev.PartitionPath
	}
	return d.dev.DevicePath
}

func (d *diskMedium) testFile() string {
	return filepath.Join(d.mountPoint, testFileName)
}

func (d *diskMedium) device() bist.ResolvedDevice {
	return d.dev
}

// checkCapacity runs before mount, so df sees the node on /dev rather than the
// medium.
func (d *diskMedium) checkCapacity(ctx context.Context, req bist.Request) error {
	return d.capacity.Check(ctx, d.source(), req.OffsetBytes+req.PayloadSizeBytes)
}

func (d *diskMedium) mount(ctx context.Context, s *Scope) error {
	return mountScoped(ctx, s, d.mounter, d.source(), d.mountPoint)
}

// erase removes a test file left behind by an earlier run.
func (d *diskMedium) erase(_ context.Context, s *Scope, _ bist.Request) error {
	s.Defer("remove test file", func() error { return removeFile(d.testFile()) })
	return removeFile(d.testFile())
}

func (d *diskMedium) write(ctx context.Context, _ *Scope, req bist.Request, payload string) (*Throughput, error) {
	t, err := d.executor.StreamWrite(ctx, payload, d.testFile(), req, true)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *diskMedium) read(ctx context.Context, _ *Scope, req bist.Request) (*Throughput, error) {
	t, err := d.executor.StreamRead(ctx, d.testFile(), req)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *diskMedium) verify(_ context.Context, _ *Scope, req bist.Request, payload string) error {
	return compareFiles(payload, d.testFile(), req.OffsetBytes, req.PayloadSizeBytes)
}

func removeFile(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
