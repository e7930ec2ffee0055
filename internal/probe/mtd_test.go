// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/ironcore-dev/board-bist/cmdutils"
	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

const lsmtdOutput = `mtd0 Image\x20Selector 524288
mtd1 Persistent\x20Register 131072
mtd12 User 33554432
`

func fakeCommand(stdout, stderr string, err error) (*testingexec.FakeExec, *testingexec.FakeCmd) {
	cmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return []byte(stdout), []byte(stderr), err },
		},
	}
	return &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(name string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(cmd, name, args...)
			},
		},
	}, cmd
}

var _ = Describe("MTDLister", func() {
	var (
		ctx   context.Context
		sysfs fstest.MapFS
	)

	BeforeEach(func() {
		ctx = context.Background()
		sysfs = fstest.MapFS{
			"sys/class/mtd/mtd12/erasesize": &fstest.MapFile{Data: []byte("65536\n")},
		}
	})

	It("resolves the User partition", func() {
		fakeExec, cmd := fakeCommand(lsmtdOutput, "", nil)
		lister := NewMTDLister(GinkgoLogr, fakeExec, sysfs)

		dev, err := lister.Resolve(ctx, DefaultMTDPartition)
		Expect(err).NotTo(HaveOccurred())
		Expect(dev.BlockDevice).To(Equal("mtd12"))
		Expect(dev.DevicePath).To(Equal("/dev/mtd12"))
		Expect(dev.SizeBytes).To(Equal(uint64(33554432)))
		Expect(dev.EraseSize).To(Equal(uint64(65536)))
		Expect(dev.SpeedClass).To(Equal(bist.SpeedClassQSPI))
		Expect(dev.Bus).To(Equal(bist.BusMTD))
		Expect(cmd.Argv[0]).To(Equal("lsmtd"))
	})

	It("unescapes partition names", func() {
		fakeExec, _ := fakeCommand(lsmtdOutput, "", nil)
		parts, err := NewMTDLister(GinkgoLogr, fakeExec, sysfs).List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(parts).To(HaveLen(3))
		Expect(parts[0].Name).To(Equal("Image Selector"))
		Expect(parts[1].Name).To(Equal("Persistent Register"))
	})

	It("tolerates a missing erase block size", func() {
		fakeExec, _ := fakeCommand(lsmtdOutput, "", nil)
		dev, err := NewMTDLister(GinkgoLogr, fakeExec, fstest.MapFS{}).Resolve(ctx, DefaultMTDPartition)
		Expect(err).NotTo(HaveOccurred())
		Expect(dev.EraseSize).To(BeZero())
	})

	It("fails when the partition does not exist", func() {
		fakeExec, _ := fakeCommand("mtd0 boot 1048576\n", "", nil)
		_, err := NewMTDLister(GinkgoLogr, fakeExec, sysfs).Resolve(ctx, DefaultMTDPartition)
		Expect(err).To(MatchError(ErrNoMedia))
	})

	It("fails when lsmtd fails", func() {
		fakeExec, _ := fakeCommand("", "lsmtd: no MTD support", errors.New("exit status 1"))
		_, err := NewMTDLister(GinkgoLogr, fakeExec, sysfs).Resolve(ctx, DefaultMTDPartition)
		Expect(err).To(MatchError(cmdutils.ErrCommand))
		Expect(err.Error()).To(ContainSubstring("no MTD support"))
	})

	It("rejects malformed listings", func() {
		fakeExec, _ := fakeCommand("mtd0 boot lots\n", "", nil)
		_, err := NewMTDLister(GinkgoLogr, fakeExec, sysfs).List(ctx)
		Expect(err).To(HaveOccurred())
	})
})
