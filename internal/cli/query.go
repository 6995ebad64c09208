package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recall/internal/domain"
	"recall/internal/service"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		user   string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "query [text...]",
		Short: "Query a user's memory",
		Long: `Ranks the user's summaries against the query text. Without a query, or
while the user has too few summaries to rank, the most recent ones are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errNoUser
			}
			report := a.svc.Recall(cmd.Context(), user, strings.Join(args, " "), limit)
			if asJSON {
				return outputReportJSON(cmd, report)
			}
			outputReport(cmd, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the report as JSON")
	return cmd
}

type reportJSON struct {
	Memory    string             `json:"memory"`
	Kind      domain.ResultKind  `json:"kind"`
	Reason    string             `json:"reason,omitempty"`
	Documents []domain.Document  `json:"documents"`
	Scores    []float64          `json:"scores,omitempty"`
	Trends    domain.TrendReport `json:"trends"`
	QueryUsed *string            `json:"query_used"`
}

func outputReportJSON(cmd *cobra.Command, r service.MemoryReport) error {
	docs := r.Result.Documents
	if docs == nil {
		docs = []domain.Document{}
	}
	data, err := json.MarshalIndent(reportJSON{
		Memory:    r.Memory,
		Kind:      r.Result.Kind,
		Reason:    r.Result.Reason.String(),
		Documents: docs,
		Scores:    r.Result.Scores,
		Trends:    r.Trends,
		QueryUsed: r.QueryUsed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReport(cmd *cobra.Command, r service.MemoryReport) {
	switch r.Result.Kind {
	case domain.ResultNoMatch:
		cmd.Println("No relevant summaries found.")
		return
	case domain.ResultRanked:
		for i, line := range r.Result.Lines {
			cmd.Printf("%s (%.2f)\n", line, r.Result.Scores[i])
		}
		return
	}
	cmd.Println(r.Memory)
}
