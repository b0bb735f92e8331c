package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long: `View and modify configuration settings for trackkeeper.

Settings are stored in ~/.trackkeeper/config.yaml`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration key to a specific value.

Available keys:
  data.dir            - directory for the yearly CSV files (default: data)
  metadata.dir        - directory for the JSON sidecar stores (default: metadata)
  fetch.window_hours  - trailing window for recently played (default: 24)
  fetch.limit         - page size for the fetch, max 50 (default: 50)
  auth.redirect_url   - OAuth redirect URL registered with the app
  auth.token_cache    - path of the cached user token
  logger.format       - text, logfmt, or json (default: text)

Examples:
  trackkeeper config set fetch.window_hours 12
  trackkeeper config set data.dir ~/spotify-data`,
	Args: cobra.ExactArgs(2),
	Run:  runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show configuration values",
	Long: `Display current configuration settings. If no key is specified,
shows all settings.

Examples:
  trackkeeper config show
  trackkeeper config show fetch.window_hours`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}

func configKeys() []string {
	return []string{
		"data.dir",
		"metadata.dir",
		"fetch.window_hours",
		"fetch.limit",
		"auth.redirect_url",
		"auth.token_cache",
		"logger.format",
	}
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key := args[0]
	value := args[1]

	viper.Set(key, value)

	err := viper.WriteConfig()
	if err != nil {
		// Try to write to default location if config doesn't exist
		err = viper.SafeWriteConfig()
		if err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			return
		}
	}

	fmt.Printf("Set %s = %v\n", key, viper.Get(key))
}

func runConfigShow(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		key := args[0]
		value := viper.Get(key)
		if value == nil {
			fmt.Printf("Key '%s' is not set\n", key)
			return
		}
		fmt.Printf("%s = %v\n", key, value)
		return
	}

	fmt.Println("Current configuration:")
	fmt.Printf("Config file: %s\n\n", viper.ConfigFileUsed())

	for _, key := range configKeys() {
		fmt.Printf("%-20s = %v\n", key, viper.Get(key))
	}
}
