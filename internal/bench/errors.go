// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"errors"
	"fmt"

	"github.com/ironcore-dev/board-bist/cmdutils"
	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/probe"
)

var (
	// ErrNoMedia means the port did not resolve to a device.
	ErrNoMedia = probe.ErrNoMedia
	// ErrCommand means an external utility failed.
	ErrCommand = cmdutils.ErrCommand

	ErrInvalidRequest = errors.New("invalid benchmark request")
	ErrCapacity       = errors.New("insufficient space")
	ErrMount          = errors.New("mount failed")
	ErrParse          = errors.New("unable to parse utility output")
	ErrClearCache     = errors.New("failed to clear pagecache, dentries and inodes")
	ErrVerify         = errors.New("read-back data does not match written data")
	ErrClassification = errors.New("performance below threshold")
)

// StageError records the pipeline stage a benchmark failed in.
type StageError struct {
	Stage bist.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
