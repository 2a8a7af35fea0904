package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/marcus/mask/internal/mapview"
	"github.com/marcus/mask/pkg/editor"
	"github.com/marcus/mask/pkg/editor/keymap"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the masking-area editor",
	Long: `Open the map editor.

Key bindings:
  d              Draw a new area
  space          Place a point at the cursor (while drawing)
  enter          Complete the polygon / select the area under the cursor
  s              Select saved areas
  e / x          Edit or delete the selected area
  esc            Cancel
  arrows, hjkl   Move the cursor
  HJKL, +/-      Pan and zoom
  ?              Toggle help
  q              Quit

The mouse works too: click to place points or select areas.`,
	GroupID: "core",
	RunE:    runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	surface := mapview.New(cfg.MaskLayer, orb.Point{cfg.Map.CenterX, cfg.Map.CenterY}, cfg.Map.Zoom)
	if cfg.Map.GridSpacing > 0 {
		surface.GridSpacing = cfg.Map.GridSpacing
	}

	keys := keymap.NewRegistry()
	keymap.RegisterDefaults(keys)
	keymap.ApplyOverrides(keys, cfg.Keys)

	model := editor.NewModel(editor.Options{
		Service: svc,
		Surface: surface,
		Keymap:  keys,
		WKID:    cfg.Map.WKID,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running editor: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(editCmd)
	for _, c := range []*cobra.Command{rootCmd, editCmd} {
		c.Flags().Int("zoom", 0, "initial zoom level")
	}
}
