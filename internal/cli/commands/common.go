// Package commands implements the sqltpl subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Konsultn-Engineering/sqltpl"
	"github.com/Konsultn-Engineering/sqltpl/engine"
	"github.com/Konsultn-Engineering/sqltpl/internal/cli/config"
	"github.com/gertd/go-pluralize"
	"github.com/spf13/cobra"

	// connector providers available to query and exec
	_ "github.com/Konsultn-Engineering/sqltpl/providers/postgres"
	_ "github.com/Konsultn-Engineering/sqltpl/providers/sqlite"
)

var plural = pluralize.NewClient()

// countOf formats n with the correctly inflected noun, e.g. "1 row", "2 rows".
func countOf(word string, n int64) string {
	return plural.Pluralize(word, int(n), true)
}

func addArgsFlag(cmd *cobra.Command) {
	cmd.Flags().String("args", "", "Template arguments as a JSON or YAML list")
}

// readTemplate returns the template argument, reading stdin when it is "-".
func readTemplate(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// templateInput reads the template and its --args for cmd.
func templateInput(cmd *cobra.Command, arg string) (string, []any, error) {
	cfg := config.FromContext(cmd.Context())
	template, err := readTemplate(cmd, arg)
	if err != nil {
		return "", nil, err
	}
	raw, _ := cmd.Flags().GetString("args")
	args, err := ParseArgs(raw, cfg.SkipToken)
	if err != nil {
		return "", nil, err
	}
	return template, args, nil
}

func newEngine(ctx context.Context) (*engine.Engine, error) {
	opts, err := config.FromContext(ctx).EngineOptions(config.GetLogger(ctx))
	if err != nil {
		return nil, err
	}
	return engine.New(opts...), nil
}

func openDB(ctx context.Context) (*sqltpl.DB, error) {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	engineOpts, err := cfg.EngineOptions(logger)
	if err != nil {
		return nil, err
	}
	if cfg.Connection.Driver == "" {
		return nil, fmt.Errorf("no connection configured: set --driver or connection.driver")
	}
	return sqltpl.Open(ctx, cfg.Connection,
		sqltpl.WithLogger(logger),
		sqltpl.WithEngineOptions(engineOpts...),
	)
}
