package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/mask/internal/output"
	"github.com/marcus/mask/internal/schema"
	"github.com/marcus/mask/internal/suggest"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved masking areas and what they hide",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		features, err := svc.Features(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if only, _ := cmd.Flags().GetString("mask"); only != "" {
			if _, ok := schema.Lookup(only); !ok {
				return fmt.Errorf("unknown mask %q%s", only, suggest.Hint(suggest.Closest(only, schema.Keys())))
			}
			kept := features[:0]
			for _, f := range features {
				if schema.IsActive(f.Attributes, only) {
					kept = append(kept, f)
				}
			}
			features = kept
		}

		w := cmd.OutOrStdout()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out := make([]output.FeatureJSON, len(features))
			for i, f := range features {
				out[i] = output.ToFeatureJSON(f)
			}
			return output.WriteJSON(w, out)
		}

		if len(features) == 0 {
			fmt.Fprintln(w, "No masking areas")
			return nil
		}
		for _, f := range features {
			fmt.Fprintln(w, output.FormatFeatureShort(f))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "JSON output")
	listCmd.Flags().String("mask", "", "only areas with this mask key set")
}
