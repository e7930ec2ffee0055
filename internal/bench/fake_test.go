// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/ironcore-dev/board-bist/cmdutils"
)

var errExit = errors.New("exit status 1")

// fakeSystem emulates the storage utilities on regular files. Device nodes are
// redirected to backing files through devices.
type fakeSystem struct {
	devices   map[string]string
	failures  map[string]error
	writeRate string
	readRate  string
	dfBlocks  uint64
	lsmtd     string
	// corrupt flips the first byte of everything written to a device.
	corrupt bool

	calls []string
	lines []string
	exec  *testingexec.FakeExec
}

func newFakeSystem() *fakeSystem {
	f := &fakeSystem{
		devices:   map[string]string{},
		failures:  map[string]error{},
		writeRate: "20.0 MB/s",
		readRate:  "100 MB/s",
		dfBlocks:  16 << 20,
	}
	action := func(name string, args ...string) utilexec.Cmd {
		cmd := &testingexec.FakeCmd{
			RunScript: []testingexec.FakeAction{
				func() ([]byte, []byte, error) { return f.run(name, args) },
			},
		}
		return testingexec.InitFakeCmd(cmd, name, args...)
	}
	script := make([]testingexec.FakeCommandAction, 64)
	for i := range script {
		script[i] = action
	}
	f.exec = &testingexec.FakeExec{CommandScript: script}
	return f
}

func commandKind(name string, args []string) string {
	switch name {
	case "dd":
		for _, a := range args {
			if a == "of=/dev/null" {
				return "dd read"
			}
		}
		return "dd write"
	case "mtd_debug":
		return "mtd_debug " + args[0]
	}
	return name
}

func (f *fakeSystem) run(name string, args []string) ([]byte, []byte, error) {
	kind := commandKind(name, args)
	f.calls = append(f.calls, kind)
	f.lines = append(f.lines, cmdutils.Line(name, args...))
	if err, ok := f.failures[kind]; ok {
		return nil, []byte(name + ": Input/output error\n"), err
	}

	switch name {
	case "df":
		out := fmt.Sprintf("Filesystem 1024-blocks Used Available Capacity Mounted on\n%s %d 0 %d 0%% /media\n",
			args[len(args)-1], f.dfBlocks, f.dfBlocks)
		return []byte(out), nil, nil
	case "lsmtd":
		return []byte(f.lsmtd), nil, nil
	case "dd":
		return f.dd(args)
	case "mtd_debug":
		if err := f.mtdDebug(args); err != nil {
			return nil, []byte(err.Error()), errExit
		}
		return nil, nil, nil
	}
	return nil, []byte("command not found"), errExit
}

func (f *fakeSystem) path(name string) string {
	if p, ok := f.devices[name]; ok {
		return p
	}
	return name
}

func (f *fakeSystem) readAt(name string, offset, length int64) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		return nil, err
	}
	if offset >= int64(len(data)) {
		return nil, nil
	}
	return data[offset:min(offset+length, int64(len(data)))], nil
}

func (f *fakeSystem) writeAt(name string, offset int64, data []byte, device bool) error {
	if device && f.corrupt && len(data) > 0 {
		data = bytes.Clone(data)
		data[0] ^= 0xff
	}
	file, err := os.OpenFile(f.path(name), os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if _, err := file.WriteAt(data, offset); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (f *fakeSystem) dd(args []string) ([]byte, []byte, error) {
	op := map[string]string{}
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			op[k] = v
		}
	}
	bs, _ := strconv.ParseInt(op["bs"], 10, 64)
	count, _ := strconv.ParseInt(op["count"], 10, 64)
	skip, _ := strconv.ParseInt(op["skip"], 10, 64)
	seek, _ := strconv.ParseInt(op["seek"], 10, 64)

	data, err := f.readAt(op["if"], skip*bs, bs*count)
	if err != nil {
		return nil, []byte("dd: " + err.Error() + "\n"), errExit
	}
	rate := f.readRate
	if op["of"] != "/dev/null" {
		rate = f.writeRate
		if err := f.writeAt(op["of"], seek*bs, data, true); err != nil {
			return nil, []byte("dd: " + err.Error() + "\n"), errExit
		}
	}
	summary := fmt.Sprintf("%d+0 records in\n%d+0 records out\n%d bytes (%d B) copied, 1.0 s, %s\n",
		count, count, len(data), len(data), rate)
	return nil, []byte(summary), nil
}

func (f *fakeSystem) mtdDebug(args []string) error {
	offset, _ := strconv.ParseInt(args[2], 10, 64)
	length, _ := strconv.ParseInt(args[3], 10, 64)
	switch args[0] {
	case "erase":
		return f.writeAt(args[1], offset, bytes.Repeat([]byte{0xff}, int(length)), false)
	case "write":
		data, err := f.readAt(args[4], 0, length)
		if err != nil {
			return err
		}
		return f.writeAt(args[1], offset, data, true)
	case "read":
		data, err := f.readAt(args[1], offset, length)
		if err != nil {
			return err
		}
		return os.WriteFile(args[4], data, 0644)
	}
	return fmt.Errorf("unknown operation %s", args[0])
}

type fakeMounter struct {
	mountErr   error
	unmountErr error
	mounted    []string
	unmounted  []string
}

func (m *fakeMounter) Mount(_ context.Context, device, mountPoint string) error {
	if m.mountErr != nil {
		return m.mountErr
	}
	m.mounted = append(m.mounted, device+" "+mountPoint)
	return nil
}

func (m *fakeMounter) Unmount(mountPoint string) error {
	m.unmounted = append(m.unmounted, mountPoint)
	return m.unmountErr
}

type fakeCaches struct {
	err   error
	drops int
}

func (c *fakeCaches) Drop() error {
	c.drops++
	return c.err
}

// shortWriter accepts n bytes and rejects the rest.
type shortWriter struct {
	n      int
	buf    bytes.Buffer
	closed bool
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) <= w.n {
		return w.buf.Write(p)
	}
	n, _ := w.buf.Write(p[:w.n])
	return n, io.ErrShortWrite
}

func (w *shortWriter) Close() error {
	w.closed = true
	return nil
}
