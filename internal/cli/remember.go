package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newRememberCommand(a *app) *cobra.Command {
	var (
		user    string
		docType string
	)
	cmd := &cobra.Command{
		Use:   "remember [activity log...]",
		Short: "Summarize an activity log and store it",
		Long: `Summarizes a raw activity log with the configured summarizer and stores the
summary together with the raw text. The log is read from stdin when no
arguments are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errNoUser
			}
			raw := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = string(data)
			}
			if strings.TrimSpace(raw) == "" {
				return errors.New("activity log is empty")
			}
			res, err := a.svc.Remember(cmd.Context(), user, raw, docType)
			if err != nil {
				return err
			}
			cmd.Printf("Stored %s (%s)\n", res.Document.ID, res.Document.Type)
			cmd.Println(res.Summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user ID")
	cmd.Flags().StringVarP(&docType, "type", "t", "", "document type (default voice_log)")
	return cmd
}
