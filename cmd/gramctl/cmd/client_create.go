package cmd

import (
	stdcontext "context"
	"fmt"
	"strings"
	"time"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/dmelo/gram-dispatch/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	createName            string
	createKeywords        []string
	createMentionResponse string
	createDailyLimit      int
	createTimezone        string
)

func newClientCreateCmd(client api.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <tenant-id> <account-id> <access-token>",
		Short: "Register a new client",
		Long: `Register a new client with its account ID and access token.

A fresh routing token is issued and the webhook URL to subscribe on the
platform side is printed once. Keywords are given as keyword=response
pairs and matched in the order they appear on the command line.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			accountID := args[1]
			accessToken := args[2]

			keywords, err := parseKeywordFlags(createKeywords)
			if err != nil {
				return err
			}

			styler := output.NewStyler(noColor)
			styler.FprintInfo(cmd.OutOrStdout(), fmt.Sprintf("Creating client '%s'...", tenantID))

			ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
			defer cancel()

			resp, err := client.CreateClient(ctx, &api.CreateClientRequest{
				TenantID:        tenantID,
				Name:            createName,
				AccountID:       accountID,
				AccessToken:     accessToken,
				Keywords:        keywords,
				MentionResponse: createMentionResponse,
				DailyLimit:      &createDailyLimit,
				Timezone:        createTimezone,
			})
			if err != nil {
				styler.FprintError(cmd.OutOrStderr(), fmt.Sprintf("Failed to create client: %v", err))
				return err
			}

			styler.FprintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Client '%s' created", tenantID))

			if outputFormat == "json" {
				jsonStr, err := output.FormatJSON(resp)
				if err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
				return nil
			}

			// Table format
			fmt.Fprintf(cmd.OutOrStdout(), "\nTenant ID:     %s\n", resp.Client.TenantID)
			fmt.Fprintf(cmd.OutOrStdout(), "Account ID:    %s\n", resp.Client.AccountID)
			fmt.Fprintf(cmd.OutOrStdout(), "Daily Limit:   %s\n", formatLimit(resp.Client.DailyLimit))
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook URL:   %s\n", resp.WebhookURL)
			if !resp.Client.CreatedAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Created At:    %s\n", resp.Client.CreatedAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&createName, "name", "", "Display name")
	cmd.Flags().StringArrayVar(&createKeywords, "keyword", nil, "Keyword rule as keyword=response (repeatable, ordered)")
	cmd.Flags().StringVar(&createMentionResponse, "mention-response", "", "Reply sent for story mentions")
	cmd.Flags().IntVar(&createDailyLimit, "daily-limit", 1000, "Max replies per day (0 = unlimited)")
	cmd.Flags().StringVar(&createTimezone, "timezone", "", "IANA timezone for the daily quota window")

	return cmd
}

// parseKeywordFlags splits repeated keyword=response flags, preserving order.
func parseKeywordFlags(raw []string) ([]api.KeywordRule, error) {
	rules := make([]api.KeywordRule, 0, len(raw))
	for _, kv := range raw {
		keyword, response, ok := strings.Cut(kv, "=")
		if !ok || keyword == "" {
			return nil, fmt.Errorf("invalid --keyword %q: expected keyword=response", kv)
		}
		rules = append(rules, api.KeywordRule{Keyword: keyword, Response: response})
	}
	return rules, nil
}

func formatLimit(limit int) string {
	if limit <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d/day", limit)
}
