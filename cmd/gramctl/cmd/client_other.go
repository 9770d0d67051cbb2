package cmd

import (
	stdcontext "context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/dmelo/gram-dispatch/internal/cli/output"
	"github.com/spf13/cobra"
)

func newClientListCmd(client api.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			styler := output.NewStyler(noColor)
			styler.FprintInfo(cmd.OutOrStdout(), "Listing clients...")

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			clients, err := client.ListClients(ctx)
			if err != nil {
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to list clients: %v", err))
				return err
			}

			if outputFormat == "json" {
				jsonStr, err := output.FormatJSON(clients)
				if err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
				return nil
			}

			// Table format
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TENANT ID\tACCOUNT ID\tACTIVE\tKEYWORDS\tDAILY LIMIT")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", c.TenantID, c.AccountID, c.Active, len(c.Keywords), formatLimit(c.DailyLimit))
			}
			w.Flush()

			return nil
		},
	}
}

func newClientGetCmd(client api.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "get <tenant-id>",
		Short: "Get client details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			c, err := client.GetClient(ctx, tenantID)
			if err != nil {
				styler := output.NewStyler(noColor)
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to get client: %v", err))
				return err
			}

			if outputFormat == "json" {
				jsonStr, err := output.FormatJSON(c)
				if err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
				return nil
			}

			// Table format
			fmt.Fprintf(cmd.OutOrStdout(), "Tenant ID:     %s\n", c.TenantID)
			if c.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Name:          %s\n", c.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account ID:    %s\n", c.AccountID)
			fmt.Fprintf(cmd.OutOrStdout(), "Active:        %t\n", c.Active)
			fmt.Fprintf(cmd.OutOrStdout(), "Daily Limit:   %s\n", formatLimit(c.DailyLimit))
			if c.Timezone != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Timezone:      %s\n", c.Timezone)
			}
			if c.MentionResponse != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Mentions:      %s\n", c.MentionResponse)
			}
			if len(c.Keywords) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Keywords:")
				for _, rule := range c.Keywords {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s\n", rule.Keyword, rule.Response)
				}
			}
			if !c.CreatedAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Created At:    %s\n", c.CreatedAt.Format(time.RFC3339))
			}
			if !c.UpdatedAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated At:    %s\n", c.UpdatedAt.Format(time.RFC3339))
			}

			return nil
		},
	}
}

func newClientDeleteCmd(client api.Dispatcher) *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "delete <tenant-id>",
		Short: "Deactivate a client (--purge removes the record)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			styler := output.NewStyler(noColor)
			styler.FprintInfo(cmd.OutOrStdout(), fmt.Sprintf("Deleting client '%s'...", tenantID))

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			err := client.DeleteClient(ctx, tenantID, purge)
			if err != nil {
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to delete client: %v", err))
				return err
			}

			if purge {
				styler.FprintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Client '%s' purged", tenantID))
			} else {
				styler.FprintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Client '%s' deactivated", tenantID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Permanently remove the record instead of deactivating")

	return cmd
}

func newClientStatsCmd(client api.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <tenant-id>",
		Short: "Show today's quota usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			stats, err := client.GetStats(ctx, tenantID)
			if err != nil {
				styler := output.NewStyler(noColor)
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to get stats: %v", err))
				return err
			}

			if outputFormat == "json" {
				jsonStr, err := output.FormatJSON(stats)
				if err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
				return nil
			}

			// Table format
			fmt.Fprintf(cmd.OutOrStdout(), "Tenant ID:     %s\n", stats.TenantID)
			fmt.Fprintf(cmd.OutOrStdout(), "Active:        %t\n", stats.Active)
			fmt.Fprintf(cmd.OutOrStdout(), "Daily Limit:   %s\n", formatLimit(stats.DailyLimit))
			fmt.Fprintf(cmd.OutOrStdout(), "Used Today:    %d\n", stats.UsedToday)
			if stats.Remaining != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Remaining:     %d\n", *stats.Remaining)
			}

			return nil
		},
	}
}
