// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// flashMedium is a raw MTD partition, typically the QSPI user partition. It has no
// filesystem: data goes to the device node directly.
type flashMedium struct {
	dev      bist.ResolvedDevice
	executor *Executor
	tempDir  string
	readBack string
}

func (f *flashMedium) device() bist.ResolvedDevice {
	return f.dev
}

func (f *flashMedium) checkCapacity(_ context.Context, req bist.Request) error {
	required := uint64(req.OffsetBytes + req.PayloadSizeBytes)
	if f.dev.SizeBytes < required {
		return fmt.Errorf("%w on %s: partition holds %s, %s are required to execute the test",
			ErrCapacity, f.dev.DevicePath, humanize.IBytes(f.dev.SizeBytes), humanize.IBytes(required))
	}
	return nil
}

func (f *flashMedium) mount(context.Context, *Scope) error {
	return nil
}

// eraseRange returns the payload range widened to whole erase blocks.
func (f *flashMedium) eraseRange(req bist.Request) (int64, int64, error) {
	size := int64(f.dev.EraseSize)
	if size <= 0 {
		return req.OffsetBytes, req.PayloadSizeBytes, nil
	}
	if req.OffsetBytes%size != 0 {
		return 0, 0, fmt.Errorf("%w: offset %d is not aligned to the erase block size %d",
			ErrInvalidRequest, req.OffsetBytes, size)
	}
	length := (req.PayloadSizeBytes + size - 1) / size * size
	if uint64(req.OffsetBytes+length) > f.dev.SizeBytes {
		return 0, 0, fmt.Errorf("%w on %s: erase range ends beyond the partition", ErrCapacity, f.dev.DevicePath)
	}
	return req.OffsetBytes, length, nil
}

func (f *flashMedium) erase(ctx context.Context, _ *Scope, req bist.Request) error {
	offset, length, err := f.eraseRange(req)
	if err != nil {
		return err
	}
	return f.executor.Erase(ctx, f.dev.DevicePath, offset, length)
}

func (f *flashMedium) write(ctx context.Context, _ *Scope, req bist.Request, payload string) (*Throughput, error) {
	if req.Mode == bist.ModeIntegrity {
		return nil, f.executor.RawWrite(ctx, f.dev.DevicePath, req.OffsetBytes, req.PayloadSizeBytes, payload)
	}
	t, err := f.executor.StreamWrite(ctx, payload, f.dev.DevicePath, req, false)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (f *flashMedium) read(ctx context.Context, s *Scope, req bist.Request) (*Throughput, error) {
	if req.Mode == bist.ModeIntegrity {
		return nil, f.readBackInto(ctx, s, req)
	}
	t, err := f.executor.StreamRead(ctx, f.dev.DevicePath, req)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (f *flashMedium) verify(ctx context.Context, s *Scope, req bist.Request, payload string) error {
	if f.readBack == "" {
		if err := f.readBackInto(ctx, s, req); err != nil {
			return err
		}
	}
	return compareFiles(payload, f.readBack, 0, req.PayloadSizeBytes)
}

// readBackInto copies the payload range of the partition into a private file.
func (f *flashMedium) readBackInto(ctx context.Context, s *Scope, req bist.Request) error {
	dir, err := os.MkdirTemp(f.tempDir, "bist-readback-")
	if err != nil {
		return err
	}
	s.Defer("remove read-back directory", func() error { return os.RemoveAll(dir) })

	file := filepath.Join(dir, "readback")
	if err := f.executor.RawRead(ctx, f.dev.DevicePath, req.OffsetBytes, req.PayloadSizeBytes, file); err != nil {
		return err
	}
	f.readBack = file
	return nil
}
