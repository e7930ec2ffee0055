// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

//go:embed boards.yaml
var defaultBoards []byte

var (
	ErrUnknownBoard = errors.New("unknown board")
	ErrInvalidLabel = errors.New("invalid test label")
)

// Boards is the set of supported boards.
type Boards struct {
	Boards []Board `json:"boards"`
}

// Board lists the storage tests of one board.
type Board struct {
	Name string `json:"name"`
	// Match holds SMBIOS product names identifying the board.
	Match []string `json:"match,omitempty"`
	Tests []Test   `json:"tests"`
}

// Test configures a single test case. Sizes accept units, e.g. "128MiB".
type Test struct {
	Label        string            `json:"label"`
	HardwarePath bist.HardwarePath `json:"hwPath,omitempty"`
	// Partition is the MTD partition name for flash tests.
	Partition   string `json:"partition,omitempty"`
	PayloadSize string `json:"payloadSize,omitempty"`
	BlockSize   string `json:"blockSize,omitempty"`
	Offset      string `json:"offset,omitempty"`
}

// BuiltIn returns the boards compiled into the binary.
func BuiltIn() (*Boards, error) {
	return Load(defaultBoards)
}

// LoadFile reads a board file replacing the compiled-in boards.
func LoadFile(name string) (*Boards, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read board file: %w", err)
	}
	return Load(data)
}

// Load parses and validates board definitions.
func Load(data []byte) (*Boards, error) {
	boards := &Boards{}
	if err := yaml.UnmarshalStrict(data, boards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the board file: %w", err)
	}
	if err := boards.validate(); err != nil {
		return nil, err
	}
	return boards, nil
}

func (b *Boards) validate() error {
	seen := map[string]bool{}
	for _, board := range b.Boards {
		if board.Name == "" {
			return errors.New("board without a name")
		}
		if seen[board.Name] {
			return fmt.Errorf("board %s defined twice", board.Name)
		}
		seen[board.Name] = true
		if _, err := board.TestCases(); err != nil {
			return fmt.Errorf("board %s: %w", board.Name, err)
		}
	}
	return nil
}

// Names returns the names of all boards.
func (b *Boards) Names() []string {
	names := make([]string, 0, len(b.Boards))
	for _, board := range b.Boards {
		names = append(names, board.Name)
	}
	return names
}

// Board returns the board called name.
func (b *Boards) Board(name string) (*Board, error) {
	for i := range b.Boards {
		if strings.EqualFold(b.Boards[i].Name, name) {
			return &b.Boards[i], nil
		}
	}
	return nil, fmt.Errorf("%w %q, supported boards are %s", ErrUnknownBoard, name, strings.Join(b.Names(), ", "))
}

// Detect returns the first board whose match names occur in one of ids.
func (b *Boards) Detect(ids []string) (*Board, bool) {
	for i := range b.Boards {
		for _, m := range b.Boards[i].Match {
			for _, id := range ids {
				if strings.Contains(strings.ToUpper(id), strings.ToUpper(m)) {
					return &b.Boards[i], true
				}
			}
		}
	}
	return nil, false
}

// TestCases expands the tests of the board in configuration order.
func (b *Board) TestCases() ([]bist.TestCase, error) {
	cases := make([]bist.TestCase, 0, len(b.Tests))
	for _, t := range b.Tests {
		tc, err := t.TestCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// Filter returns the test cases whose label is in labels. No labels selects all.
func Filter(cases []bist.TestCase, labels []string) ([]bist.TestCase, error) {
	if len(labels) == 0 {
		return cases, nil
	}
	var selected []bist.TestCase
	for _, label := range labels {
		found := false
		for _, tc := range cases {
			if tc.Label == label {
				selected = append(selected, tc)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s is not configured for the board", ErrInvalidLabel, label)
		}
	}
	return selected, nil
}

// TestCase turns the configuration into a runnable test case.
func (t Test) TestCase() (bist.TestCase, error) {
	port, mode, err := ParseLabel(t.Label)
	if err != nil {
		return bist.TestCase{}, err
	}
	tc := bist.TestCase{
		Label:        t.Label,
		Port:         port,
		Medium:       MediumOf(t.Label),
		HardwarePath: t.HardwarePath,
		Partition:    t.Partition,
		Request:      DefaultRequest(MediumOf(t.Label), mode),
	}
	if tc.Medium == bist.MediumDisk && len(tc.HardwarePath) == 0 {
		return bist.TestCase{}, fmt.Errorf("%s: disk test without hwPath", t.Label)
	}

	for _, s := range []struct {
		value string
		dest  *int64
	}{
		{t.PayloadSize, &tc.Request.PayloadSizeBytes},
		{t.BlockSize, &tc.Request.BlockSizeBytes},
		{t.Offset, &tc.Request.OffsetBytes},
	} {
		if s.value == "" {
			continue
		}
		v, err := humanize.ParseBytes(s.value)
		if err != nil {
			return bist.TestCase{}, fmt.Errorf("%s: %w", t.Label, err)
		}
		*s.dest = int64(v)
	}
	return tc, nil
}

// ParseLabel derives the port and the mode from a label such as
// "usb1_read_performance". The port is the first token, upper-cased.
func ParseLabel(label string) (string, bist.Mode, error) {
	token, _, _ := strings.Cut(label, "_")
	if token == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	port := strings.ToUpper(token)

	switch {
	case strings.Contains(label, "read_write_performance"):
		return port, bist.ModeReadWrite, nil
	case strings.Contains(label, "read_performance"):
		return port, bist.ModeRead, nil
	case strings.Contains(label, "write_performance"):
		return port, bist.ModeWrite, nil
	case strings.HasPrefix(label, "mtd") && strings.Contains(label, "read_write"):
		return port, bist.ModeIntegrity, nil
	}
	return "", "", fmt.Errorf("%w: %q selects no test mode", ErrInvalidLabel, label)
}

// MediumOf returns the medium a label tests: QSPI and MTD labels address flash.
func MediumOf(label string) bist.Medium {
	if strings.HasPrefix(label, "qspi") || strings.HasPrefix(label, "mtd") {
		return bist.MediumMTD
	}
	return bist.MediumDisk
}

// DefaultRequest returns the payload geometry used unless a test overrides it.
func DefaultRequest(medium bist.Medium, mode bist.Mode) bist.Request {
	switch {
	case mode == bist.ModeIntegrity:
		return bist.Request{Mode: mode, PayloadSizeBytes: 1 << 20, BlockSizeBytes: 1 << 20}
	case medium == bist.MediumMTD:
		return bist.Request{Mode: mode, PayloadSizeBytes: 1 << 20, BlockSizeBytes: 64 << 10}
	}
	return bist.Request{Mode: mode, PayloadSizeBytes: 128 << 20, BlockSizeBytes: 32 << 20}
}
