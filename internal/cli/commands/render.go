package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Print the SQL a template builds",
		Long: `Build a template with the given arguments and print the resulting SQL
without connecting to a database. Use "-" to read the template from stdin.`,
		Example: `  sqltpl render 'SELECT ?# FROM users WHERE id = ?d' --args '[[name, email], 2]'

  # Drop a conditional block
  sqltpl render 'SELECT * FROM users{ WHERE block = ?d}' --args '["#skip#"]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0])
		},
	}
	addArgsFlag(cmd)
	return cmd
}

func runRender(cmd *cobra.Command, arg string) error {
	template, args, err := templateInput(cmd, arg)
	if err != nil {
		return err
	}
	e, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}
	query, err := e.BuildQuery(template, args...)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), query)
	return nil
}
