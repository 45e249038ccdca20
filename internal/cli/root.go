package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleet/config"
)

// NewRootCmd — корневая команда; без подкоманды запускает сервер.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleet",
		Short:         "Fleet serves the device fleet GraphQL API",
		Long:          `Fleet serves a GraphQL API over the device fleet database: users log in, receive a signed token, and query their devices and firmware update status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", `path to a YAML config file (overrides CONFIG_FILE)`)
	flags.String("host", "", `hostname or ip address to bind the api server to (HOST)`)
	flags.Int("port", 0, `port to bind the api server to (PORT)`)
	flags.String("log-level", "", `trace|debug|info|warn|error|fatal (LOG_LEVEL)`)

	root.AddCommand(newServeCmd(), newMigrateCmd(), newPasswdCmd())
	return root
}

// loadConfig привязывает заданные флаги к ключам viper и читает конфиг.
// Незаданные флаги не перекрывают env и файл.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	for flag, key := range map[string]string{
		"config":    "config",
		"host":      "server.host",
		"port":      "server.port",
		"log-level": "logs.level",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := viper.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.Load()
}
