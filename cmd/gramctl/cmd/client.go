package cmd

import (
	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/spf13/cobra"
)

func newClientCmd(client api.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage dispatcher clients",
		Long:  `Create, list, get, update, and delete clients.`,
	}

	// Add subcommands
	cmd.AddCommand(newClientCreateCmd(client))
	cmd.AddCommand(newClientListCmd(client))
	cmd.AddCommand(newClientGetCmd(client))
	cmd.AddCommand(newClientUpdateCmd(client))
	cmd.AddCommand(newClientDeleteCmd(client))
	cmd.AddCommand(newClientStatsCmd(client))

	return cmd
}
