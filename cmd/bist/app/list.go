// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/config"
)

func NewListCommand(o *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test cases of a board, or all boards with --board=all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := o.boards()
			if err != nil {
				return err
			}
			var selected []config.Board
			if o.board == "all" {
				selected = boards.Boards
			} else {
				board, err := o.selectBoard(boards)
				if err != nil {
					return err
				}
				selected = []config.Board{*board}
			}

			cases := map[string][]bist.TestCase{}
			for _, b := range selected {
				if cases[b.Name], err = b.TestCases(); err != nil {
					return err
				}
			}

			switch output {
			case "yaml":
				data, err := yaml.Marshal(cases)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case "table":
			default:
				return fmt.Errorf("unknown output format %q", output)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "BOARD\tLABEL\tPORT\tMODE\tMEDIUM\tHWPATH")
			for _, b := range selected {
				for _, tc := range cases[b.Name] {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", b.Name, tc.Label, tc.Port,
						tc.Request.Mode, tc.Medium, strings.Join(tc.HardwarePath, ","))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format, one of table or yaml.")
	return cmd
}
