package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kgandhi/trackkeeper/pkg/alert"
	"github.com/kgandhi/trackkeeper/pkg/logging"
	"github.com/kgandhi/trackkeeper/pkg/spotify"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trackkeeper",
	Short: "Personal Spotify listening-history collector",
	Long: `Pulls your recent Spotify listening history into per-year CSV files and
enriches each play with track duration and artist genres. Meant to run
unattended from a periodic job: each command runs to completion and exits.`,
	Version: "0.1.0",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trackkeeper/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	// Secrets come from the environment; a .env alongside the binary is how
	// the unattended job supplies them.
	godotenv.Load()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir := filepath.Join(home, ".trackkeeper")
		os.MkdirAll(configDir, 0o755)

		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("metadata.dir", "metadata")
	viper.SetDefault("fetch.window_hours", 24)
	viper.SetDefault("fetch.limit", 50)
	viper.SetDefault("auth.redirect_url", "http://127.0.0.1:8888/callback")
	viper.SetDefault("auth.token_cache", filepath.Join(home, ".trackkeeper", "token.json"))
	viper.SetDefault("logger.format", "text")

	level := "info"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	slog.SetDefault(logging.Setup(level, viper.GetString("logger.format")))
}

// recordPath is the yearly source-of-truth CSV.
func recordPath(year int) string {
	return filepath.Join(viper.GetString("data.dir"), fmt.Sprintf("spotify_data_%d.csv", year))
}

// enrichedPath is the derived table with genre and duration columns.
func enrichedPath(year int) string {
	return filepath.Join(viper.GetString("data.dir"), fmt.Sprintf("spotify_data_with_metadata_%d.csv", year))
}

func newSink() *alert.Sink {
	return alert.NewSink(os.Getenv("ALERT_WEBHOOK_URL"))
}

func credentials() (spotify.Credentials, error) {
	return spotify.CredentialsFromEnv(viper.GetString("auth.redirect_url"))
}
