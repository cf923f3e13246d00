package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/board"
)

func newRoomCodeCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "roomcode",
		Short: "Print fresh room codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i := 0; i < count; i++ {
				code, err := board.NewRoomCode()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of codes")
	return cmd
}
