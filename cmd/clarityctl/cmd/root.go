// Package cmd implements the clarityctl commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "clarityctl",
	Short: "Command line client for the claritycash server",
	Long: `clarityctl drives the claritycash API from the terminal: sign in,
link a sandbox bank account, and inspect spending.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Secrets (FIREBASE_API_KEY, Plaid sandbox credentials) come from the
	// environment or a .env file next to the binary.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "claritycash server base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
