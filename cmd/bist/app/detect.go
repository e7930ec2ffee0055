// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDetectCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Identify the board from SMBIOS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := o.detectBoard()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Manufacturer: %s\nProduct: %s\nFamily: %s\nBaseboard: %s\n",
				id.Manufacturer, id.Product, id.Family, id.Baseboard)

			boards, err := o.boards()
			if err != nil {
				return err
			}
			board, ok := boards.Detect(id.Names())
			if !ok {
				return fmt.Errorf("no supported board matches %v", id.Names())
			}
			_, _ = fmt.Fprintf(out, "Board: %s\n", board.Name)
			return nil
		},
	}
}
