// Package cmd implements the pantalla-player CLI commands
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/narabyte/pantalla-signage/internal/player/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pantalla-player",
	Short: "Pantalla display agent",
	Long: `pantalla-player drives a signage screen: it fetches the terminal's
configuration and schedule from the provider, resolves which event to show,
and keeps the screen running from persisted state when the provider is
unreachable.`,
}

// Execute runs the root command; called once from main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pantalla-player/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "provider base URL")
	rootCmd.PersistentFlags().String("terminal-id", "", "terminal ID or internal name")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads the config file and environment, then applies flag overrides
func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	if server, _ := rootCmd.PersistentFlags().GetString("server"); server != "" {
		cfg.Server = server
	}
	if terminalID, _ := rootCmd.PersistentFlags().GetString("terminal-id"); terminalID != "" {
		cfg.TerminalID = terminalID
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
