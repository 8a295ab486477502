package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	intconfig "travelagency/internal/config"
	"travelagency/internal/domain/models"
	"travelagency/internal/services"
)

// PasswordEnv lets scripts pass the password without putting it in argv.
const PasswordEnv = "TRAVELCTL_ADMIN_PASSWORD"

var createAdmin = func(ctx context.Context, in models.AdminUserInput) (models.AdminUser, error) {
	db, err := intconfig.ConnectDB(intconfig.LoadEnv().DB)
	if err != nil {
		return models.AdminUser{}, err
	}
	defer intconfig.CloseDB()
	return services.AdminUserService{DB: db, RequestID: "travelctl"}.Create(ctx, in)
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}

	var in models.AdminUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or editor account",
		Example: `  travelctl admin create --email ops@example.com --name "Ops" --role admin --password '...'
  TRAVELCTL_ADMIN_PASSWORD=... travelctl admin create --email ed@example.com --name Ed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(PasswordEnv)
			}
			if in.Password == "" {
				return fmt.Errorf("--password or %s is required", PasswordEnv)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			u, err := createAdmin(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (id %d)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "login email")
	create.Flags().StringVar(&in.Name, "name", "", "display name")
	create.Flags().StringVar(&in.Role, "role", models.RoleEditor, "admin or editor")
	create.Flags().StringVar(&in.Password, "password", "", "initial password (min 10 chars)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}
