// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"flag"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/ironcore-dev/board-bist/internal/config"
	"github.com/ironcore-dev/board-bist/internal/probe"
)

const Name string = "bist"

// options are shared by all commands.
type options struct {
	board      string
	boardsFile string
	zap        zap.Options

	// detectBoard is replaced in tests.
	detectBoard func() (probe.BoardIdentity, error)
}

func NewCommand() *cobra.Command {
	o := &options{
		zap:         zap.Options{Development: true},
		detectBoard: probe.DetectBoard,
	}
	root := &cobra.Command{
		Use:          Name,
		Short:        "Storage built-in self-test for embedded boards",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logf.SetLogger(zap.New(zap.UseFlagOptions(&o.zap), zap.WriteTo(cmd.ErrOrStderr())))
		},
	}

	goFlags := flag.NewFlagSet(Name, flag.ContinueOnError)
	o.zap.BindFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)
	root.PersistentFlags().StringVar(&o.board, "board", "",
		"Board to test. Detected from SMBIOS if not set.")
	root.PersistentFlags().StringVar(&o.boardsFile, "boards-file", "",
		"YAML file with board definitions replacing the built-in ones.")

	root.AddCommand(NewRunCommand(o))
	root.AddCommand(NewListCommand(o))
	root.AddCommand(NewResolveCommand(o))
	root.AddCommand(NewDetectCommand(o))
	return root
}

func (o *options) log() logr.Logger {
	return logf.Log.WithName(Name)
}

func (o *options) boards() (*config.Boards, error) {
	if o.boardsFile != "" {
		return config.LoadFile(o.boardsFile)
	}
	return config.BuiltIn()
}

// selectBoard returns the board named by --board, or the one SMBIOS identifies.
func (o *options) selectBoard(boards *config.Boards) (*config.Board, error) {
	if o.board != "" {
		return boards.Board(o.board)
	}
	id, err := o.detectBoard()
	if err != nil {
		return nil, fmt.Errorf("board detection failed, set --board: %w", err)
	}
	board, ok := boards.Detect(id.Names())
	if !ok {
		return nil, fmt.Errorf("%w: no board matches %v, set --board", config.ErrUnknownBoard, id.Names())
	}
	o.log().Info("Detected board", "board", board.Name, "product", id.Product, "baseboard", id.Baseboard)
	return board, nil
}
