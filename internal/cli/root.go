// Package cli provides the command-line interface for sqltpl.
package cli

import (
	"fmt"
	"os"

	"github.com/Konsultn-Engineering/sqltpl/internal/cli/commands"
	"github.com/Konsultn-Engineering/sqltpl/internal/cli/config"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqltpl",
		Short: "Build literal SQL from query templates",
		Long: `sqltpl substitutes arguments into SQL templates.

Placeholders: ? (value), ?d (integer), ?f (float), ?a (list or key/value
pairs), ?# (identifiers). A {...} block is dropped when one of its
arguments is the skip token.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			// Every log line of one invocation carries the same run id.
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose).
				With("run", ulid.Make().String())
			if cfg.FileUsed != "" {
				logger.Debug("using config file", "path", cfg.FileUsed)
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./sqltpl.yaml)")
	pf.String("dialect", "", "Quoting dialect (mysql|postgres|sqlite|tidb)")
	pf.Bool("strict", false, "Fail on missing or unused arguments")
	pf.Bool("escape", false, "Escape quotes inside string literals")
	pf.String("skip-token", "", "Argument string that stands for the skip marker (default \"#skip#\")")
	pf.Int("cache-size", 0, "Parsed template cache size, 0 disables it")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.String("driver", "", "Connection provider (postgres|sqlite)")
	pf.String("path", "", "SQLite database path")
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.String("database", "", "Database name")
	pf.String("user", "", "Database user")
	pf.String("password", "", "Database password")
	pf.String("ssl-mode", "", "Postgres sslmode")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"mysql", "postgres", "sqlite", "tidb"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewExecCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
