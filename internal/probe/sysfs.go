// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Paths are relative to the root of the filesystem view so that tests can substitute
// an in-memory tree.
var (
	pathBusUSBDevices = "sys/bus/usb/devices"
	pathBusMMCDevices = "sys/bus/mmc/devices"
	pathClassMTD      = "sys/class/mtd"
	pathDev           = "dev"
)

func ToString(fsys fs.FS, name string) (string, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("unable to read file %s: %w", name, err)
	}

	return strings.TrimSpace(string(contents)), nil
}

func ToUint(fsys fs.FS, name string) (uint64, error) {
	fileString, err := ToString(fsys, name)
	if err != nil {
		return 0, fmt.Errorf("unable to read string from file %s: %w", name, err)
	}

	num, err := strconv.ParseUint(fileString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to convert %s file to uint: %w", fileString, err)
	}

	return num, nil
}

// exists reports whether name can be stat'ed in fsys.
func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

// devicePath turns a kernel device name into its absolute /dev node.
func devicePath(name string) string {
	return "/" + pathDev + "/" + name
}
