package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/mask/internal/output"
)

var countCmd = &cobra.Command{
	Use:     "count",
	Short:   "Print the number of saved masking areas",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := svc.Count(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.WriteJSON(cmd.OutOrStdout(), map[string]int64{"count": n})
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCount(n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().Bool("json", false, "JSON output")
}
