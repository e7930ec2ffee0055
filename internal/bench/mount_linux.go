// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package bench

import (
	"golang.org/x/sys/unix"
)

func (m *SystemMounter) Unmount(mountPoint string) error {
	return unix.Unmount(mountPoint, unix.MNT_DETACH)
}
