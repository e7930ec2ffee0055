// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// DefaultBlockSearchDepth bounds how many directory levels below a bus device node
// are searched for a "block" directory. USB mass storage sits five levels deep
// (interface/host/target/lun/block), MMC cards one, so the bound is six rather than
// three levels.
const DefaultBlockSearchDepth = 6

// ErrNoMedia is returned when none of the topology tokens of a port resolve.
var ErrNoMedia = errors.New("no media detected")

// Resolver turns a HardwarePath into the kernel block device behind it.
type Resolver struct {
	fsys     fs.FS
	log      logr.Logger
	MaxDepth int
}

// NewResolver creates a Resolver over fsys, which must be rooted at "/".
func NewResolver(log logr.Logger, fsys fs.FS) *Resolver {
	return &Resolver{
		fsys:     fsys,
		log:      log,
		MaxDepth: DefaultBlockSearchDepth,
	}
}

// NewHostResolver creates a Resolver over the host filesystem.
func NewHostResolver(log logr.Logger) *Resolver {
	return NewResolver(log, os.DirFS("/"))
}

// Resolve probes the tokens of hw in order and returns the first one that has an
// enumerated block device. A later token is never preferred, even if it resolves too.
func (r *Resolver) Resolve(hw bist.HardwarePath, port string) (bist.ResolvedDevice, error) {
	sdPort := IsSDPort(port)
	for i, token := range hw {
		bus := BusOf(token)
		name := r.findBlock(bus, token)
		if name == "" {
			r.log.V(1).Info("No block device behind topology token", "port", port, "token", token)
			continue
		}

		dev := bist.ResolvedDevice{
			BlockDevice: name,
			DevicePath:  devicePath(name),
			SpeedClass:  SpeedClassFor(bus, i, sdPort),
			Bus:         bus,
			Token:       token,
			Index:       i,
		}
		if part := PartitionName(name, preferredPartition(sdPort)); exists(r.fsys, path.Join(pathDev, part)) {
			dev.PartitionPath = devicePath(part)
			dev.DevicePath = dev.PartitionPath
		}
		r.log.Info("Resolved port", "port", port, "devicePath", dev.DevicePath,
			"transferStandard", dev.SpeedClass.Description())
		return dev, nil
	}
	return bist.ResolvedDevice{}, fmt.Errorf("%w at %s port", ErrNoMedia, port)
}

// deviceNode returns the sysfs directory a token refers to. USB tokens are device
// names; MMC tokens are prefixes of the card's device name, the first lexical match wins.
func (r *Resolver) deviceNode(bus bist.Bus, token string) (string, bool) {
	if bus == bist.BusUSB {
		return path.Join(pathBusUSBDevices, token), true
	}

	entries, err := fs.ReadDir(r.fsys, pathBusMMCDevices)
	if err != nil {
		r.log.V(1).Info("Unable to list MMC devices", "error", err.Error())
		return "", false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), token) {
			return path.Join(pathBusMMCDevices, e.Name()), true
		}
	}
	return "", false
}

// findBlock searches below the token's device node for a "block" directory and
// returns the name of the first device in it. Symlinks are not followed.
func (r *Resolver) findBlock(bus bist.Bus, token string) string {
	node, ok := r.deviceNode(bus, token)
	if !ok {
		return ""
	}

	var found string
	err := fs.WalkDir(r.fsys, node, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == node {
				return err
			}
			r.log.V(1).Info("Skipping unreadable device directory", "path", p, "error", err.Error())
			return nil
		}
		if p == node || !d.IsDir() {
			return nil
		}

		depth := strings.Count(strings.TrimPrefix(p, node+"/"), "/") + 1
		if d.Name() == "block" {
			entries, err := fs.ReadDir(r.fsys, p)
			if err == nil && len(entries) > 0 {
				found = entries[0].Name()
				return fs.SkipAll
			}
			return fs.SkipDir
		}
		if depth >= r.MaxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.log.V(1).Info("Unable to search device node", "path", node, "error", err.Error())
	}
	return found
}
