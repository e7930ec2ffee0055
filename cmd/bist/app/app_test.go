// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/config"
	"github.com/ironcore-dev/board-bist/internal/probe"
	"github.com/ironcore-dev/board-bist/internal/runner"
)

type stubBench struct {
	failing map[string]bool
	ran     []string
}

func (b *stubBench) Run(_ context.Context, tc bist.TestCase) bist.Result {
	b.ran = append(b.ran, tc.Label)
	res := bist.Result{
		Label:    tc.Label,
		Port:     tc.Port,
		Mode:     tc.Request.Mode,
		Device:   &bist.ResolvedDevice{DevicePath: "/dev/sda1", SpeedClass: bist.SpeedClassUSB3},
		ReadMBps: ptr.To(120.0),
		Passed:   !b.failing[tc.Label],
	}
	if !res.Passed {
		res.FailedStage = bist.StageClassify
	}
	return res
}

func kv260() (probe.BoardIdentity, error) {
	return probe.BoardIdentity{Manufacturer: "XILINX", Product: "SMK-K26-XCL2GC", Baseboard: "SCK-KV-G"}, nil
}

func execute(args ...string) (string, error) {
	cmd := NewCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(GinkgoWriter)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

var _ = Describe("bist", func() {
	It("lists the test cases of a board", func() {
		out, err := execute("list", "--board", "kr260")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("LABEL"))
		Expect(out).To(MatchRegexp(`kr260\s+sd_read_performance\s+SD\s+Read\s+disk\s+1-1.1`))
		Expect(out).To(MatchRegexp(`kr260\s+mtd_read_write\s+MTD\s+Integrity\s+mtd`))
	})

	It("lists all boards as YAML", func() {
		out, err := execute("list", "--board", "all", "-o", "yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("kd240:"))
		Expect(out).To(ContainSubstring("label: qspi_read_write_performance"))
	})

	It("rejects an unknown board", func() {
		_, err := execute("list", "--board", "zcu102")
		Expect(err).To(MatchError(config.ErrUnknownBoard))
	})

	Context("run", func() {
		var (
			bench *stubBench
			r     *runOptions
		)

		BeforeEach(func() {
			bench = &stubBench{failing: map[string]bool{}}
			r = &runOptions{
				options: &options{detectBoard: kv260},
				newBenchmark: func(*runOptions) runner.CaseRunner {
					return bench
				},
			}
		})

		It("runs the selected tests of the detected board", func() {
			cmd, out := testCommand()
			Expect(r.run(cmd, []string{"usb1_read_performance", "sd_write_performance"})).To(Succeed())
			Expect(bench.ran).To(Equal([]string{"usb1_read_performance", "sd_write_performance"}))
			Expect(out.String()).To(MatchRegexp(`usb1_read_performance\s+USB1\s+/dev/sda1\s+USB3\s+-\s+120.00 MB/s\s+PASS`))
		})

		It("fails when a test fails and still writes metrics", func() {
			bench.failing["usb2_write_performance"] = true
			r.metricsFile = filepath.Join(GinkgoT().TempDir(), "bist.prom")

			cmd, out := testCommand()
			err := r.run(cmd, nil)
			Expect(err).To(MatchError(ErrTestsFailed))
			Expect(err).To(MatchError(ContainSubstring("1 of 12 tests failed")))
			Expect(out.String()).To(ContainSubstring("FAIL (Classify)"))

			data, err := os.ReadFile(r.metricsFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`bist_storage_test_passed{board="kv260",failed_stage="Classify",label="usb2_write_performance",mode="Write",port="USB2"} 0`))
		})

		It("asks for --board when detection fails", func() {
			r.detectBoard = func() (probe.BoardIdentity, error) {
				return probe.BoardIdentity{}, errors.New("no SMBIOS entry point")
			}
			cmd, _ := testCommand()
			Expect(r.run(cmd, nil)).To(MatchError(ContainSubstring("set --board")))
			Expect(bench.ran).To(BeEmpty())
		})

		It("rejects an unknown label", func() {
			r.board = "kd240"
			cmd, _ := testCommand()
			Expect(r.run(cmd, []string{"usb1_read_performance"})).To(MatchError(config.ErrInvalidLabel))
		})
	})

	Context("resolve", func() {
		It("shows the device behind a label", func() {
			r := &resolveOptions{
				options: &options{board: "kv260"},
				fsys: fstest.MapFS{
					"sys/bus/mmc/devices/mmc1:0001/block/mmcblk1": &fstest.MapFile{Mode: fs.ModeDir | 0755},
					"dev/mmcblk1p2": &fstest.MapFile{},
				},
			}
			cmd, out := testCommand()
			Expect(r.run(cmd, "sd_read_performance")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("devicePath: /dev/mmcblk1p2"))
			Expect(out.String()).To(ContainSubstring("speedClass: SD_Generic"))
		})

		It("reports a port without media", func() {
			r := &resolveOptions{
				options: &options{board: "kv260"},
				fsys:    fstest.MapFS{},
			}
			cmd, _ := testCommand()
			Expect(r.run(cmd, "usb1_read_performance")).To(MatchError(probe.ErrNoMedia))
		})
	})

	It("detects the board", func() {
		cmd := NewDetectCommand(&options{detectBoard: kv260})
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		Expect(cmd.RunE(cmd, nil)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Baseboard: SCK-KV-G"))
		Expect(out.String()).To(ContainSubstring("Board: kv260"))
	})
})
