package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/audit"
	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

func createAdminCmd() *cobra.Command {
	var (
		email    string
		name     string
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first administrator account",
		Long: `Create a user without an authenticated caller.

The password is read from --password or, when empty, from PROPCTL_ADMIN_PASSWORD.

Examples:
  propctl create-admin --email ops@example.com --name "Ops Team"
  propctl create-admin --email finance@example.com --name "Finance" --role ADMIN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("PROPCTL_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or PROPCTL_ADMIN_PASSWORD is required")
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			users := usecase.NewUserService(
				database.NewUserRepository(e.db),
				usecase.BcryptHasher{},
				nil,
				usecase.NewAuditLogger(audit.NewLogSink(e.log), e.log),
				e.log,
			)
			system := usecase.Actor{UserID: "system", Role: entity.RoleSuperAdmin, IP: "127.0.0.1"}
			u, err := users.Create(cmd.Context(), system, usecase.CreateUserInput{
				Email:    email,
				FullName: name,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "full name")
	cmd.Flags().StringVar(&role, "role", string(entity.RoleSuperAdmin), "role to grant")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.MarkFlagRequired("email")
	return cmd
}
