package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechXTT/litebridge/internal/logger"
	"github.com/TechXTT/litebridge/pkg/bridge"
	"github.com/TechXTT/litebridge/pkg/config"
	"github.com/TechXTT/litebridge/pkg/native"
	"github.com/TechXTT/litebridge/pkg/runtime"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	database   string
	readOnly   bool
	verbose    bool
}

// load reads the config file and applies flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.database != "" {
		cfg.Database = o.database
	}
	if o.readOnly {
		cfg.ReadOnly = true
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}
	return cfg, nil
}

// open loads the configuration and connects to the database.
func (o *globalOptions) open(ctx context.Context) (*sql.DB, *config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	db, err := runtime.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "litebridge %s (%s driver %s)\n",
				bridge.Version, native.DriverType(), native.DriverPackage())
		},
	}
}

// NewRootCmd builds the top-level `litebridge` command.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "litebridge",
		Short: "SQLite through a JDBC-style bridge",
		Long: `litebridge opens a SQLite database through the litebridge database/sql
driver and runs statements, schema inspection and migrations against it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetVerbose(opts.verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultFile+")")
	flags.StringVar(&opts.database, "db", "", "database path, :memory: or file: URI")
	flags.BoolVar(&opts.readOnly, "read-only", false, "open the database read-only")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log transaction and migration activity")

	root.AddCommand(NewExecCmd(opts))
	root.AddCommand(NewQueryCmd(opts))
	root.AddCommand(NewTablesCmd(opts))
	root.AddCommand(NewDescribeCmd(opts))
	root.AddCommand(NewMigrateCmd(opts))
	root.AddCommand(NewVersionCmd())
	return root
}
