package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"recall/internal/domain"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

func newTrendsCommand(a *app) *cobra.Command {
	var (
		user   string
		weeks  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show a user's productivity trends",
		Long:  `Reports coarse trend directions over the user's most recent summaries.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errNoUser
			}
			report := a.svc.Trends(cmd.Context(), user, weeks)
			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal trends: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			outputTrends(cmd, user, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user ID")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "number of recent summaries to consider (0 uses the configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output trends as JSON")
	return cmd
}

func outputTrends(cmd *cobra.Command, user string, r domain.TrendReport) {
	if r.NoData {
		cmd.Println(domain.NoTrendDataMessage)
		return
	}
	cmd.Println(headingStyle.Render("Trends for " + user))
	cmd.Printf("  Productivity:     %s\n", r.ProductivityTrend)
	cmd.Printf("  Focus:            %s\n", r.FocusPattern)
	cmd.Printf("  Meeting load:     %s\n", r.MeetingLoad)
	cmd.Printf("  Context switches: %s\n", r.ContextSwitches)
	cmd.Printf("  %d summaries (%s)\n", r.SummaryCount, r.DataRange)
}
