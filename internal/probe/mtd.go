// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"

	"github.com/ironcore-dev/board-bist/cmdutils"
	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// DefaultMTDPartition is the flash partition reserved for user data on the boards we test.
const DefaultMTDPartition = "User"

// MTDPartition is one row of the lsmtd listing.
type MTDPartition struct {
	Device    string
	Name      string
	SizeBytes uint64
}

// MTDLister finds MTD partitions by name.
type MTDLister struct {
	exec utilexec.Interface
	fsys fs.FS
	log  logr.Logger
}

// NewMTDLister creates an MTDLister; fsys must be rooted at "/".
func NewMTDLister(log logr.Logger, exec utilexec.Interface, fsys fs.FS) *MTDLister {
	return &MTDLister{
		exec: exec,
		fsys: fsys,
		log:  log,
	}
}

// NewHostMTDLister creates an MTDLister for the running system.
func NewHostMTDLister(log logr.Logger) *MTDLister {
	return NewMTDLister(log, utilexec.New(), os.DirFS("/"))
}

// List returns all MTD devices and partitions.
func (l *MTDLister) List(ctx context.Context) ([]MTDPartition, error) {
	out, err := cmdutils.Run(ctx, l.exec, "lsmtd", "--bytes", "--raw", "--noheadings", "--output", "DEVICE,NAME,SIZE")
	if err != nil {
		return nil, fmt.Errorf("error listing MTD partitions on the board: %w", err)
	}
	return parseLsmtd(out.Stdout)
}

// Resolve returns the partition called name as a device ready for benchmarking.
func (l *MTDLister) Resolve(ctx context.Context, name string) (bist.ResolvedDevice, error) {
	parts, err := l.List(ctx)
	if err != nil {
		return bist.ResolvedDevice{}, err
	}
	for _, p := range parts {
		if p.Name != name {
			continue
		}
		dev := bist.ResolvedDevice{
			BlockDevice: p.Device,
			DevicePath:  devicePath(p.Device),
			SpeedClass:  bist.SpeedClassQSPI,
			Bus:         bist.BusMTD,
			SizeBytes:   p.SizeBytes,
		}
		eraseSize, err := ToUint(l.fsys, path.Join(pathClassMTD, p.Device, "erasesize"))
		if err != nil {
			l.log.V(1).Info("Unable to read erase block size", "device", p.Device, "error", err.Error())
		} else {
			dev.EraseSize = eraseSize
		}
		l.log.Info("Resolved MTD partition", "name", name, "devicePath", dev.DevicePath, "sizeBytes", p.SizeBytes)
		return dev, nil
	}
	return bist.ResolvedDevice{}, fmt.Errorf("%w: MTD %s partition not available on the board", ErrNoMedia, name)
}

// parseLsmtd parses raw lsmtd output with the columns DEVICE NAME SIZE.
func parseLsmtd(out []byte) ([]MTDPartition, error) {
	var parts []MTDPartition
	for _, line := range cmdutils.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("unexpected lsmtd line %q", line)
		}
		size, err := strconv.ParseUint(fields[len(fields)-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse size of %s: %w", fields[0], err)
		}
		parts = append(parts, MTDPartition{
			Device:    fields[0],
			Name:      unescapeRaw(strings.Join(fields[1:len(fields)-1], " ")),
			SizeBytes: size,
		})
	}
	return parts, nil
}

// unescapeRaw undoes the \xNN escaping of util-linux style raw output.
func unescapeRaw(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
