// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package cmdutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	utilexec "k8s.io/utils/exec"
)

// ErrCommand is returned when an external utility could not be run or exited non-zero.
var ErrCommand = errors.New("command failed")

// Output holds what a command wrote.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Line renders a command the way it would be typed in a shell.
func Line(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Run executes name with args to completion. The C locale is forced so that utilities
// print numbers the way the parsers expect them.
func Run(ctx context.Context, e utilexec.Interface, name string, args ...string) (Output, error) {
	cmd := e.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)
	cmd.SetEnv(append(os.Environ(), "LC_ALL=C"))

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrCommand, Line(name, args...), ctxErr)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return out, fmt.Errorf("%w: %s: %w: %s", ErrCommand, Line(name, args...), err, msg)
	}
	return out, fmt.Errorf("%w: %s: %w", ErrCommand, Line(name, args...), err)
}

// transform returns a list of transformed list elements with function f.
func transform[L ~[]E, E any, T any](list L, f func(E) T) []T {
	ret := make([]T, len(list))
	for i, elem := range list {
		ret[i] = f(elem)
	}
	return ret
}

// Lines splits output into trimmed, non-empty lines.
func Lines(b []byte) []string {
	lines := transform(strings.Split(string(b), "\n"), strings.TrimSpace)
	ret := lines[:0]
	for _, l := range lines {
		if l != "" {
			ret = append(ret, l)
		}
	}
	return ret
}
