package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"recall/internal/tui"
)

func newTUICommand(a *app) *cobra.Command {
	var (
		user  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse a user's memory interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errNoUser
			}
			p := tea.NewProgram(tui.New(a.svc, user, limit),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	return cmd
}
