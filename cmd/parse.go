package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-mcp/internal/query"
)

func newParseCmd() *cobra.Command {
	var (
		timezone string
		now      string
	)

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a natural-language calendar query and print the result",
		Long: `Parse a natural-language calendar query without contacting Google and
print the structured result as JSON. Useful for checking how a phrase is
understood.

Examples:
  calendar-mcp parse "what's on tomorrow?"
  calendar-mcp parse "meetings next week" --timezone Europe/Berlin
  calendar-mcp parse "today" --now 2025-08-13T10:30:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference := time.Now()
			if now != "" {
				t, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return fmt.Errorf("invalid --now %q: expected RFC3339: %w", now, err)
				}
				reference = t
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closer, err := setupLogger(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			parser := query.NewParser(
				query.WithDefaultTimeZone(cfg.Query.DefaultTimezone),
				query.WithDefaults(cfg.Query.DefaultDaysAhead, cfg.Query.DefaultMaxResults),
				query.WithLogger(logger),
			)
			parsed := parser.Parse(args[0], timezone, reference)

			out, err := json.MarshalIndent(parsed, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone to interpret the query in (default: configured timezone)")
	cmd.Flags().StringVar(&now, "now", "", "Reference time in RFC3339 (default: current time)")

	return cmd
}
