// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bist

// SpeedClass is the fixed throughput category of a port. It reflects board wiring,
// not the speed negotiated at runtime.
type SpeedClass string

const (
	SpeedClassSDC       SpeedClass = "SD_C"
	SpeedClassSDUHS     SpeedClass = "SD_UHS"
	SpeedClassSDGeneric SpeedClass = "SD_Generic"
	SpeedClassUSB2      SpeedClass = "USB2"
	SpeedClassUSB3      SpeedClass = "USB3"
	SpeedClassQSPI      SpeedClass = "QSPI"
)

// SpeedClasses lists every known class.
var SpeedClasses = []SpeedClass{
	SpeedClassSDC,
	SpeedClassSDUHS,
	SpeedClassSDGeneric,
	SpeedClassUSB2,
	SpeedClassUSB3,
	SpeedClassQSPI,
}

// Description returns the human readable transfer standard.
func (c SpeedClass) Description() string {
	switch c {
	case SpeedClassSDC:
		return "SD Speed C-class"
	case SpeedClassSDUHS:
		return "SD Speed UHS-class"
	case SpeedClassSDGeneric:
		return "SD Speed class"
	case SpeedClassUSB2:
		return "USB 2.0"
	case SpeedClassUSB3:
		return "USB 3.0"
	case SpeedClassQSPI:
		return "QSPI flash"
	}
	return string(c)
}
