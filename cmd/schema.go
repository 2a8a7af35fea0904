package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/mask/internal/output"
	"github.com/marcus/mask/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "Describe the mask categories stored with each area",
	GroupID: "core",
	// The schema is static; skip config, logging and the store.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.WriteJSON(w, schema.Flags())
		}

		md := output.SchemaMarkdown()
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			fmt.Fprint(w, md)
			return nil
		}
		rendered, err := output.RenderMarkdown(md)
		if err != nil {
			fmt.Fprint(w, md)
			return nil
		}
		fmt.Fprintln(w, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("json", false, "JSON output")
	schemaCmd.Flags().Bool("plain", false, "print raw markdown")
}
