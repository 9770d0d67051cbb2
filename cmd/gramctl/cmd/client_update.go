package cmd

import (
	stdcontext "context"
	"fmt"
	"time"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/dmelo/gram-dispatch/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	updateAccessToken     string
	updateKeywords        []string
	updateMentionResponse string
	updateDailyLimit      int
	updateTimezone        string
	updateActive          bool
)

func newClientUpdateCmd(client api.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <tenant-id>",
		Short: "Update client configuration",
		Long: `Update configuration fields on an existing client.

Only the flags given on the command line are changed. --keyword replaces
the whole keyword table, in the order the flags appear.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("access-token") &&
				!cmd.Flags().Changed("keyword") &&
				!cmd.Flags().Changed("mention-response") &&
				!cmd.Flags().Changed("daily-limit") &&
				!cmd.Flags().Changed("timezone") &&
				!cmd.Flags().Changed("active") {
				return fmt.Errorf("at least one field flag must be specified")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			styler := output.NewStyler(noColor)
			styler.FprintInfo(cmd.OutOrStdout(), fmt.Sprintf("Updating client '%s'...", tenantID))

			req := &api.UpdateClientRequest{}
			if cmd.Flags().Changed("access-token") {
				req.AccessToken = &updateAccessToken
			}
			if cmd.Flags().Changed("keyword") {
				keywords, err := parseKeywordFlags(updateKeywords)
				if err != nil {
					return err
				}
				req.Keywords = &keywords
			}
			if cmd.Flags().Changed("mention-response") {
				req.MentionResponse = &updateMentionResponse
			}
			if cmd.Flags().Changed("daily-limit") {
				req.DailyLimit = &updateDailyLimit
			}
			if cmd.Flags().Changed("timezone") {
				req.Timezone = &updateTimezone
			}
			if cmd.Flags().Changed("active") {
				req.Active = &updateActive
			}

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			c, err := client.UpdateClient(ctx, tenantID, req)
			if err != nil {
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to update client: %v", err))
				return err
			}

			styler.FprintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Client '%s' updated", tenantID))

			if outputFormat == "json" {
				jsonStr, err := output.FormatJSON(c)
				if err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "\nTenant ID:     %s\n", c.TenantID)
				fmt.Fprintf(cmd.OutOrStdout(), "Active:        %t\n", c.Active)
				fmt.Fprintf(cmd.OutOrStdout(), "Daily Limit:   %s\n", formatLimit(c.DailyLimit))
				fmt.Fprintf(cmd.OutOrStdout(), "Keywords:      %d\n", len(c.Keywords))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&updateAccessToken, "access-token", "", "New platform access token")
	cmd.Flags().StringArrayVar(&updateKeywords, "keyword", nil, "Keyword rule as keyword=response (repeatable, replaces table)")
	cmd.Flags().StringVar(&updateMentionResponse, "mention-response", "", "New story mention reply")
	cmd.Flags().IntVar(&updateDailyLimit, "daily-limit", 0, "New daily reply limit (0 = unlimited)")
	cmd.Flags().StringVar(&updateTimezone, "timezone", "", "New IANA timezone for the quota window")
	cmd.Flags().BoolVar(&updateActive, "active", true, "Activate or deactivate the client")

	return cmd
}
