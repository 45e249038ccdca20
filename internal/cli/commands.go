package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fleet/config"
	"fleet/internal/db"
	"fleet/internal/logs"
	"fleet/internal/repo"
	"fleet/internal/secrets"
	"fleet/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "starts the GraphQL api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
}

func serve(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app := &server.App{}
	if err := app.Initialize(cfg); err != nil {
		return err
	}
	return app.Run()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "creates or updates the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(_ *config.Config, d *gorm.DB) error {
				if err := db.Migrate(d); err != nil {
					return err
				}
				logs.Logger.Info("database migrated")
				return nil
			})
		},
	}
}

func newPasswdCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "sets the login password of an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(_ *config.Config, d *gorm.DB) error {
				ctx := cmd.Context()
				user, err := repo.NewStore(d, repo.Options{}).FindUserByEmail(ctx, email, false)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("no user record found matching email: %s", email)
				}
				if err := secrets.New(repo.NewCredentialStore(d)).SetPassword(ctx, email, password); err != nil {
					return errors.Wrap(err, "set password")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", `email address of the user`)
	cmd.Flags().StringVar(&password, "password", "", `new password`)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// withDB открывает БД по конфигу, логи уходят в stdout по LOG_LEVEL.
func withDB(cmd *cobra.Command, fn func(*config.Config, *gorm.DB) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.LogFormat()})
	d, err := db.Open(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(d) }()
	return fn(cfg, d)
}
