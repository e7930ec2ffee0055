// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"

	"github.com/ironcore-dev/board-bist/cmdutils"
	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// DefaultStreamTimeout bounds a single streaming copy.
const DefaultStreamTimeout = 10 * time.Minute

// Executor drives the block level utilities. Streaming copies run under a timeout,
// one-shot utilities do not.
type Executor struct {
	exec          utilexec.Interface
	log           logr.Logger
	streamTimeout time.Duration
}

func NewExecutor(log logr.Logger, exec utilexec.Interface, streamTimeout time.Duration) *Executor {
	if streamTimeout <= 0 {
		streamTimeout = DefaultStreamTimeout
	}
	return &Executor{
		exec:          exec,
		log:           log,
		streamTimeout: streamTimeout,
	}
}

// StreamWrite copies the payload onto target and returns the rate dd measured.
// With dsync every block is written through to the medium before the next one.
func (e *Executor) StreamWrite(ctx context.Context, payload, target string, req bist.Request, dsync bool) (Throughput, error) {
	args := []string{
		"if=" + payload,
		"of=" + target,
		"bs=" + strconv.FormatInt(req.BlockSizeBytes, 10),
		"count=" + strconv.FormatInt(req.Blocks(), 10),
		"iflag=fullblock",
	}
	if dsync {
		args = append(args, "oflag=dsync")
	}
	if req.OffsetBytes > 0 {
		args = append(args, "seek="+strconv.FormatInt(req.OffsetBytes/req.BlockSizeBytes, 10))
	}
	return e.stream(ctx, args)
}

// StreamRead reads the payload range of source and returns the rate dd measured.
func (e *Executor) StreamRead(ctx context.Context, source string, req bist.Request) (Throughput, error) {
	args := []string{
		"if=" + source,
		"of=/dev/null",
		"bs=" + strconv.FormatInt(req.BlockSizeBytes, 10),
		"count=" + strconv.FormatInt(req.Blocks(), 10),
		"iflag=fullblock",
	}
	if req.OffsetBytes > 0 {
		args = append(args, "skip="+strconv.FormatInt(req.OffsetBytes/req.BlockSizeBytes, 10))
	}
	return e.stream(ctx, args)
}

func (e *Executor) stream(ctx context.Context, args []string) (Throughput, error) {
	ctx, cancel := context.WithTimeout(ctx, e.streamTimeout)
	defer cancel()

	e.log.V(1).Info("Running streaming copy", "command", cmdutils.Line("dd", args...))
	out, err := cmdutils.Run(ctx, e.exec, "dd", args...)
	if err != nil {
		return 0, err
	}
	// dd reports its statistics on stderr.
	return ParseTransferRate(out.Stderr)
}

// Erase erases length bytes of an MTD device starting at offset.
func (e *Executor) Erase(ctx context.Context, device string, offset, length int64) error {
	_, err := cmdutils.Run(ctx, e.exec, "mtd_debug", "erase", device, itoa(offset), itoa(length))
	return err
}

// RawWrite writes length bytes of file to an MTD device at offset.
func (e *Executor) RawWrite(ctx context.Context, device string, offset, length int64, file string) error {
	_, err := cmdutils.Run(ctx, e.exec, "mtd_debug", "write", device, itoa(offset), itoa(length), file)
	return err
}

// RawRead reads length bytes of an MTD device at offset into file.
func (e *Executor) RawRead(ctx context.Context, device string, offset, length int64, file string) error {
	_, err := cmdutils.Run(ctx, e.exec, "mtd_debug", "read", device, itoa(offset), itoa(length), file)
	return err
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
