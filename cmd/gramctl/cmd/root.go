package cmd

import (
	"os"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/spf13/cobra"
)

var (
	version   string
	commit    string
	buildDate string

	// Global flags
	serverURL    string
	outputFormat string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "gramctl",
	Short: "Dispatcher admin CLI",
	Long: `gramctl manages clients of the webhook dispatcher.

It provides commands to register, list, update, and delete clients,
inspect quota usage, and print the per-client webhook URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", getEnvOrDefault("GRAM_SERVER_URL", "http://localhost:8080"), "Dispatcher HTTP URL")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "Output format: json|table")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func initClient() api.Dispatcher {
	return api.NewHTTPDispatcher(serverURL)
}

func Execute() error {
	client := initClient()

	rootCmd.AddCommand(newClientCmd(client))

	return rootCmd.Execute()
}

func SetVersion(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
