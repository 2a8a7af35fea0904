package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marcus/mask/internal/config"
	"github.com/marcus/mask/internal/logging"
)

var (
	version string

	// cfg is the effective configuration: file, then env, then flags.
	cfg config.Config

	logCloser io.Closer
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "mask",
	Short: "Draw and manage masking areas on a feature layer",
	Long: `mask - edit masking-area polygons stored in an ArcGIS feature layer.

Run without a command to open the editor: draw polygons on the map, choose
which elements each area hides, and select saved areas to edit or delete.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// execute runs the root command and closes the log file whether or not
// the command failed.
func execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	// Set here rather than in the literal: both refer back to rootCmd.
	rootCmd.PersistentPreRunE = setup
	rootCmd.RunE = runEdit

	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	pf := rootCmd.PersistentFlags()
	pf.String("store", "", `feature store: "arcgis" or "sqlite:<path>"`)
	pf.String("layer-url", "", "feature layer URL (arcgis store)")
	pf.String("token", "", "access token for the feature layer")
	pf.Duration("timeout", 0, "timeout for each store call")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
}

const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// setup loads the configuration, applies flags and starts logging. The
// editor owns the terminal, so it logs to a file; other commands log to
// stderr unless log_file is set.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(&loaded, cmd.Flags())
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	logFile := cfg.LogFile
	if logFile == "" && isEditor(cmd) {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		logFile = filepath.Join(dir, "mask.log")
	}
	session, closer, err := logging.Setup(logFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	logCloser = closer

	store, _ := cfg.StoreBackend()
	slog.Debug("start", "cmd", cmd.Name(), "version", version, "store", store, "session", session)
	return nil
}

func isEditor(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == editCmd
}

// applyFlags copies explicitly set flags over the configuration.
func applyFlags(c *config.Config, flags *pflag.FlagSet) {
	if f := flags.Lookup("store"); f != nil && f.Changed {
		c.Store = f.Value.String()
	}
	if f := flags.Lookup("layer-url"); f != nil && f.Changed {
		c.LayerURL = f.Value.String()
	}
	if f := flags.Lookup("token"); f != nil && f.Changed {
		c.Token = f.Value.String()
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		c.LogLevel = f.Value.String()
	}
	if flags.Changed("timeout") {
		if d, err := flags.GetDuration("timeout"); err == nil {
			c.Timeout = d
		}
	}
	if flags.Changed("zoom") {
		if z, err := flags.GetInt("zoom"); err == nil {
			c.Map.Zoom = z
		}
	}
}
