// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package bench

import (
	"fmt"
	"runtime"
)

func (m *SystemMounter) Unmount(mountPoint string) error {
	return fmt.Errorf("lazy unmount of %s is not supported on %s", mountPoint, runtime.GOOS)
}
