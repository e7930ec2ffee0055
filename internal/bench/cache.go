// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"golang.org/x/sys/unix"
)

var pathDropCaches = "/proc/sys/vm/drop_caches"

// dropAll frees the pagecache, dentries and inodes.
const dropAll = "3\n"

// CacheInvalidator discards cached file data so that a read hits the medium.
type CacheInvalidator interface {
	Drop() error
}

// CacheDropper writes to the kernel cache control file.
type CacheDropper struct {
	log  logr.Logger
	open func() (io.WriteCloser, error)
	sync func()
}

func NewCacheDropper(log logr.Logger) *CacheDropper {
	return &CacheDropper{
		log:  log,
		open: openDropCaches,
		sync: unix.Sync,
	}
}

func openDropCaches() (io.WriteCloser, error) {
	return os.OpenFile(pathDropCaches, os.O_WRONLY, 0)
}

func (c *CacheDropper) Drop() error {
	c.sync()

	f, err := c.open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClearCache, err)
	}
	n, werr := io.WriteString(f, dropAll)
	cerr := f.Close()
	if n != len(dropAll) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrClearCache, n, len(dropAll))
	}
	if werr != nil {
		return fmt.Errorf("%w: %w", ErrClearCache, werr)
	}
	if cerr != nil {
		return fmt.Errorf("%w: %w", ErrClearCache, cerr)
	}
	c.log.V(1).Info("Dropped page cache, dentries and inodes")
	return nil
}
