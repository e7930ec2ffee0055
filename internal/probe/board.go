// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"

	"github.com/siderolabs/go-smbios/smbios"
)

// BoardIdentity is what the firmware tells us about the board we run on.
type BoardIdentity struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	Family       string `json:"family,omitempty"`
	Baseboard    string `json:"baseboard,omitempty"`
}

// Names returns the non-empty identification strings, most specific first.
func (b BoardIdentity) Names() []string {
	var names []string
	for _, n := range []string{b.Product, b.Baseboard, b.Family} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

var readSMBIOS = smbios.New

// DetectBoard reads the SMBIOS system and baseboard information.
func DetectBoard() (BoardIdentity, error) {
	sm, err := readSMBIOS()
	if err != nil {
		return BoardIdentity{}, fmt.Errorf("failed to read SMBIOS: %w", err)
	}
	return BoardIdentity{
		Manufacturer: sm.SystemInformation.Manufacturer,
		Product:      sm.SystemInformation.ProductName,
		Family:       sm.SystemInformation.Family,
		Baseboard:    sm.BaseboardInformation.Product,
	}, nil
}
