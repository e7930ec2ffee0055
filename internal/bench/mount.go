// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	utilexec "k8s.io/utils/exec"

	"github.com/ironcore-dev/board-bist/cmdutils"
)

// Mounter attaches a device to a directory and detaches it again.
type Mounter interface {
	Mount(ctx context.Context, device, mountPoint string) error
	// Unmount detaches lazily: the mount point is usable for removal right away even
	// if something still holds a reference into the filesystem.
	Unmount(mountPoint string) error
}

// SystemMounter mounts with the mount utility, letting it detect the filesystem type.
type SystemMounter struct {
	exec utilexec.Interface
}

func NewSystemMounter(exec utilexec.Interface) *SystemMounter {
	return &SystemMounter{exec: exec}
}

func (m *SystemMounter) Mount(ctx context.Context, device, mountPoint string) error {
	_, err := cmdutils.Run(ctx, m.exec, "mount", device, mountPoint)
	return err
}

// mountScoped creates mountPoint, mounts device on it and registers the unmount and
// the removal of every directory it created with s.
func mountScoped(ctx context.Context, s *Scope, m Mounter, device, mountPoint string) error {
	created, err := mkdirAllTracked(mountPoint)
	s.Defer("remove mount directory", func() error { return removeDirs(created) })
	if err != nil {
		return fmt.Errorf("%w: error creating directory %s to mount %s: %w", ErrMount, mountPoint, device, err)
	}

	if err := m.Mount(ctx, device, mountPoint); err != nil {
		return fmt.Errorf("%w: error mounting %s at %s: %w", ErrMount, device, mountPoint, err)
	}
	s.log.Info("Device mounted", "device", device, "mountPoint", mountPoint)
	s.Defer("unmount "+mountPoint, func() error {
		if err := m.Unmount(mountPoint); err != nil {
			return fmt.Errorf("device could not be unmounted at %s: %w", mountPoint, err)
		}
		s.log.Info("Device unmounted", "mountPoint", mountPoint)
		return nil
	})
	return nil
}

// mkdirAllTracked works like os.MkdirAll but returns the directories it created,
// outermost first.
func mkdirAllTracked(dir string) ([]string, error) {
	var missing []string
	for p := filepath.Clean(dir); ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}

	slices.Reverse(missing)
	return mkdirs(missing)
}

// mkdirs creates dirs in order and returns those it created itself. A directory
// that appeared in the meantime belongs to someone else and is not returned.
func mkdirs(dirs []string) ([]string, error) {
	var created []string
	for _, dir := range dirs {
		err := os.Mkdir(dir, 0755)
		switch {
		case err == nil:
			created = append(created, dir)
		case errors.Is(err, fs.ErrExist):
		default:
			return created, err
		}
	}
	return created, nil
}

// removeDirs removes dirs innermost first. Directories that are not empty are left
// alone so that a failed unmount never takes data on the device with it.
func removeDirs(dirs []string) error {
	var errs []error
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
