package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gabtab/gabtab/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check <script.yaml>",
	Short: "Validate a conversation script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := script.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: ok (%d steps)\n", sc.Name, len(sc.Steps))
		return nil
	},
}
