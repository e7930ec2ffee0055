// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	utilexec "k8s.io/utils/exec"
	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/config"
	"github.com/ironcore-dev/board-bist/internal/probe"
)

var hostFS fs.FS = os.DirFS("/")

type resolveOptions struct {
	*options
	exec         utilexec.Interface
	fsys         fs.FS
	// describeDisk is nil in tests.
	describeDisk func(name string) (*bist.DiskInfo, error)
}

func NewResolveCommand(o *options) *cobra.Command {
	r := &resolveOptions{options: o}
	cmd := &cobra.Command{
		Use:   "resolve <label>",
		Short: "Show the device a test case would run against without touching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args[0])
		},
	}
	return cmd
}

func (r *resolveOptions) run(cmd *cobra.Command, label string) error {
	log := r.log()

	boards, err := r.boards()
	if err != nil {
		return err
	}
	board, err := r.selectBoard(boards)
	if err != nil {
		return err
	}
	all, err := board.TestCases()
	if err != nil {
		return err
	}
	cases, err := config.Filter(all, []string{label})
	if err != nil {
		return err
	}
	tc := cases[0]

	if r.fsys == nil {
		r.exec, r.fsys, r.describeDisk = utilexec.New(), hostFS, probe.DescribeDisk
	}

	var dev bist.ResolvedDevice
	switch tc.Medium {
	case bist.MediumMTD:
		partition := tc.Partition
		if partition == "" {
			partition = probe.DefaultMTDPartition
		}
		dev, err = probe.NewMTDLister(log.WithName("mtd"), r.exec, r.fsys).Resolve(cmd.Context(), partition)
	default:
		dev, err = probe.NewResolver(log.WithName("resolver"), r.fsys).Resolve(tc.HardwarePath, tc.Port)
		if err == nil && r.describeDisk != nil {
			if info, derr := r.describeDisk(dev.BlockDevice); derr == nil {
				dev.Disk = info
			}
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	data, err := yaml.Marshal(dev)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
