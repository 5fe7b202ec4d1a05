package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/cmd/teddycloud/internal/config"
)

var (
	// Global flags
	verbose bool

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "teddycloud",
	Short: "Self-hosted content server and TAF transcoder",
	Long: `teddycloud - a self-hosted replacement for the cartridge-tag
cloud endpoint: it transcodes audio into TAF files, stores them under a
two-level rUID directory layout, and serves them with range and
live-stream support.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/teddycloud/
  Linux:   ~/.config/teddycloud/
  Windows: %AppData%/teddycloud/

Use 'teddycloud config' to manage contexts, each holding one core.yaml.

Examples:
  # Create a context and point it at a content root
  teddycloud config add-context dev
  teddycloud config set dev internal.contentDirFull /var/lib/teddycloud/content

  # Transcode a file into the content root
  teddycloud convert file:///tmp/episode.mp3 --audio-id 42 --out /var/lib/teddycloud/content/01234567/89ABCDEF

  # Serve the content root
  teddycloud serve --content-dir /var/lib/teddycloud/content --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		// Store error for deferred reporting — commands that need config
		// will get a clear error via GetConfig(). This avoids failing
		// non-config commands like 'teddycloud version'.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
// Returns an error if the config could not be loaded (e.g., HOME not set).
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		// Try loading again (e.g., dir was created since init).
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
