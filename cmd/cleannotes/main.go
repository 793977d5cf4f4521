package main

import (
	"os"

	"github.com/rifat0153/cleannotes/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	viper   *viper.Viper
	cfgFile string
}

func newRootCommand() *cobra.Command {
	app := &cli{viper: config.NewViper()}
	rootCmd := &cobra.Command{
		Use:           "cleannotes",
		Short:         "Personal notes service and command line editor",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	}

	app.setupFlags(rootCmd)
	rootCmd.AddCommand(
		app.newServeCommand(),
		app.newTokenCommand(),
		app.newNotesCommand(),
	)
	return rootCmd
}

func (app *cli) setupFlags(cmd *cobra.Command) {
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.String("storage-driver", defaults.GetString("storage.driver"), "Storage driver (sqlite, memory)")
	flags.String("database-path", defaults.GetString("database.path"), "SQLite database path")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.GetString("log.format"), "Log format (json, console)")
	flags.String("signing-secret", "", "API token signing secret (overrides env)")

	app.bindFlag(cmd, "http.address", "http-address")
	app.bindFlag(cmd, "storage.driver", "storage-driver")
	app.bindFlag(cmd, "database.path", "database-path")
	app.bindFlag(cmd, "log.level", "log-level")
	app.bindFlag(cmd, "log.format", "log-format")
	app.bindFlag(cmd, "auth.signing_secret", "signing-secret")
}

func (app *cli) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := app.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (app *cli) initConfig() error {
	if app.cfgFile == "" {
		return nil
	}
	app.viper.SetConfigFile(app.cfgFile)
	return app.viper.ReadInConfig()
}
