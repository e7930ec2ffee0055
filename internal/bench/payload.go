// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const chunkSize = 1 << 20

// writePayload fills dir/payload with size random bytes.
func writePayload(dir string, size int64) (string, error) {
	name := filepath.Join(dir, "payload")
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := io.CopyN(f, rand.Reader, size); err != nil {
		return "", fmt.Errorf("error writing data into test file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	return name, nil
}

// compareFiles compares the first length bytes of expected with length bytes of
// actual starting at offset.
func compareFiles(expected, actual string, offset, length int64) error {
	want, err := os.Open(expected)
	if err != nil {
		return fmt.Errorf("test file written to the device is not readable: %w", err)
	}
	defer func() {
		_ = want.Close()
	}()
	got, err := os.Open(actual)
	if err != nil {
		return fmt.Errorf("%w: test file read from the device is not readable: %w", ErrVerify, err)
	}
	defer func() {
		_ = got.Close()
	}()
	if _, err := got.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}

	wantBuf := make([]byte, chunkSize)
	gotBuf := make([]byte, chunkSize)
	for pos := int64(0); pos < length; {
		n := min(int64(chunkSize), length-pos)
		if _, err := io.ReadFull(want, wantBuf[:n]); err != nil {
			return fmt.Errorf("error reading test file at offset %d: %w", pos, err)
		}
		if _, err := io.ReadFull(got, gotBuf[:n]); err != nil {
			return fmt.Errorf("%w: read-back data ends at offset %d: %w", ErrVerify, offset+pos, err)
		}
		if i := firstDiff(wantBuf[:n], gotBuf[:n]); i >= 0 {
			return fmt.Errorf("%w: first mismatch at offset %d", ErrVerify, offset+pos+int64(i))
		}
		pos += n
	}
	return nil
}

func firstDiff(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
