// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bist

import "time"

// Mode selects which phases of a benchmark are scored.
type Mode string

const (
	ModeWrite     Mode = "Write"
	ModeRead      Mode = "Read"
	ModeReadWrite Mode = "ReadWrite"
	// ModeIntegrity writes, reads back and compares without measuring throughput.
	ModeIntegrity Mode = "Integrity"
)

// ScoresWrite reports whether the write phase is classified.
func (m Mode) ScoresWrite() bool {
	return m == ModeWrite || m == ModeReadWrite
}

// Reads reports whether a read phase follows the write phase.
func (m Mode) Reads() bool {
	return m == ModeRead || m == ModeReadWrite || m == ModeIntegrity
}

// Direction is the data direction a threshold applies to.
type Direction string

const (
	DirectionRead  Direction = "Read"
	DirectionWrite Direction = "Write"
)

// Request holds the per-run payload geometry.
type Request struct {
	Mode             Mode  `json:"mode"`
	PayloadSizeBytes int64 `json:"payloadSizeBytes"`
	BlockSizeBytes   int64 `json:"blockSizeBytes"`
	OffsetBytes      int64 `json:"offsetBytes"`
}

// Blocks returns the number of blocks covering the payload.
func (r Request) Blocks() int64 {
	if r.BlockSizeBytes <= 0 {
		return 0
	}
	n := r.PayloadSizeBytes / r.BlockSizeBytes
	if r.PayloadSizeBytes%r.BlockSizeBytes != 0 {
		n++
	}
	return n
}

// Stage names a step of the benchmark pipeline.
type Stage string

const (
	StageResolve       Stage = "Resolve"
	StageCapacityCheck Stage = "CapacityCheck"
	StageMount         Stage = "Mount"
	StagePrepare       Stage = "Prepare"
	StageErase         Stage = "Erase"
	StageWrite         Stage = "Write"
	StageClearCache    Stage = "ClearCache"
	StageRead          Stage = "Read"
	StageVerify        Stage = "Verify"
	StageClassify      Stage = "Classify"
)

// Result is produced exactly once per benchmark run.
type Result struct {
	Label  string          `json:"label"`
	Port   string          `json:"port"`
	Mode   Mode            `json:"mode"`
	Device *ResolvedDevice `json:"device,omitempty"`

	// Throughputs are in MB/s (10^6 bytes per second).
	WriteMBps *float64 `json:"writeMBps,omitempty"`
	ReadMBps  *float64 `json:"readMBps,omitempty"`

	Passed        bool          `json:"passed"`
	FailedStage   Stage         `json:"failedStage,omitempty"`
	FailureReason string        `json:"failureReason,omitempty"`
	Started       time.Time     `json:"started"`
	Duration      time.Duration `json:"duration"`
}
