package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/infra/mail"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

func retryNotificationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "retry-notifications",
		Short: "Retry failed notifications whose backoff has elapsed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			renderer, err := mail.NewRenderer()
			if err != nil {
				return fmt.Errorf("parse templates: %w", err)
			}
			c := e.cfg
			svc := usecase.NewNotificationService(
				database.NewNotificationRepository(e.db),
				renderer,
				mail.NewEmailSender(c.MailHost, c.MailPort, c.MailUser, c.MailPass, c.MailFrom),
				nil,
				e.log,
			)

			sent, err := svc.RetryDue(cmd.Context(), time.Now(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d notification(s) delivered\n", sent)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum notifications to retry")
	return cmd
}
