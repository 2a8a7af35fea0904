package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marcus/mask/internal/config"
	"github.com/marcus/mask/internal/output"
	"github.com/marcus/mask/internal/suggest"
)

// validConfigKeys lists the supported config keys for set/get. Key
// overrides use "keys.<context>:<key>".
var validConfigKeys = []string{
	"store",
	"layer_url",
	"token",
	"timeout",
	"mask_layer",
	"map.wkid",
	"map.zoom",
	"map.center_x",
	"map.center_y",
	"map.grid_spacing",
	"log_level",
	"log_format",
	"log_file",
}

func isValidConfigKey(key string) bool {
	if strings.HasPrefix(key, "keys.") && len(key) > len("keys.") {
		return true
	}
	for _, k := range validConfigKeys {
		if k == key {
			return true
		}
	}
	return false
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage mask configuration",
	GroupID: "system",
	// Config commands must work even when the file does not validate.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			output.Error("load config: %v", err)
			return err
		}
		if c.Token != "" {
			c.Token = "********"
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		if err := c.Validate(); err != nil {
			output.Warning("%v", err)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !isValidConfigKey(key) {
			return unknownKey(key)
		}
		c, err := config.Load()
		if err != nil {
			output.Error("load config: %v", err)
			return err
		}
		val, err := getConfigValue(c, key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if !isValidConfigKey(key) {
			return unknownKey(key)
		}

		path, err := config.Path()
		if err != nil {
			return err
		}
		c, err := config.LoadFile(path)
		if err != nil {
			output.Error("load config: %v", err)
			return err
		}
		if err := setConfigValue(&c, key, val); err != nil {
			output.Error("%v", err)
			return err
		}
		if err := config.Save(path, c); err != nil {
			output.Error("save config: %v", err)
			return err
		}
		output.Success("Set %s", key)
		return nil
	},
}

func unknownKey(key string) error {
	keys := append([]string(nil), validConfigKeys...)
	sort.Strings(keys)
	hint := suggest.Hint(suggest.Closest(key, keys))
	output.Error("unknown config key: %s%s", key, hint)
	fmt.Println("Valid keys:", strings.Join(keys, ", "), "keys.<context>:<key>")
	return fmt.Errorf("unknown config key: %s%s", key, hint)
}

func getConfigValue(c config.Config, key string) (string, error) {
	if binding, ok := strings.CutPrefix(key, "keys."); ok {
		return c.Keys[binding], nil
	}
	switch key {
	case "store":
		return c.Store, nil
	case "layer_url":
		return c.LayerURL, nil
	case "token":
		return c.Token, nil
	case "timeout":
		return c.Timeout.String(), nil
	case "mask_layer":
		return c.MaskLayer, nil
	case "map.wkid":
		return strconv.Itoa(c.Map.WKID), nil
	case "map.zoom":
		return strconv.Itoa(c.Map.Zoom), nil
	case "map.center_x":
		return strconv.FormatFloat(c.Map.CenterX, 'f', -1, 64), nil
	case "map.center_y":
		return strconv.FormatFloat(c.Map.CenterY, 'f', -1, 64), nil
	case "map.grid_spacing":
		return strconv.FormatFloat(c.Map.GridSpacing, 'f', -1, 64), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "log_file":
		return c.LogFile, nil
	}
	return "", unknownKey(key)
}

func setConfigValue(c *config.Config, key, val string) error {
	if binding, ok := strings.CutPrefix(key, "keys."); ok {
		if c.Keys == nil {
			c.Keys = map[string]string{}
		}
		if val == "" {
			delete(c.Keys, binding)
		} else {
			c.Keys[binding] = val
		}
		return nil
	}

	var err error
	switch key {
	case "store":
		c.Store = val
	case "layer_url":
		c.LayerURL = val
	case "token":
		c.Token = val
	case "timeout":
		var d time.Duration
		if d, err = time.ParseDuration(val); err == nil {
			c.Timeout = d
		}
	case "mask_layer":
		c.MaskLayer = val
	case "map.wkid":
		c.Map.WKID, err = strconv.Atoi(val)
	case "map.zoom":
		c.Map.Zoom, err = strconv.Atoi(val)
	case "map.center_x":
		c.Map.CenterX, err = strconv.ParseFloat(val, 64)
	case "map.center_y":
		c.Map.CenterY, err = strconv.ParseFloat(val, 64)
	case "map.grid_spacing":
		c.Map.GridSpacing, err = strconv.ParseFloat(val, 64)
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	case "log_file":
		c.LogFile = val
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configShowCmd, configGetCmd, configSetCmd)
}
