package commands

import (
	"fmt"
	"io"

	"github.com/Konsultn-Engineering/sqltpl/database"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <template>",
		Short: "Build a template and print the rows it returns",
		Long: `Build a template, run it against the configured connection and print
the result as a table.`,
		Example: `  sqltpl query 'SELECT * FROM users WHERE id IN (?a)' --args '[[1, 2, 3]]' --driver sqlite --path app.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0])
		},
	}
	addArgsFlag(cmd)
	return cmd
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <template>",
		Short: "Build a template and execute it as a statement",
		Long: `Build a template, execute it against the configured connection and print
the number of affected rows.`,
		Example: `  sqltpl exec 'UPDATE users SET ?a WHERE id = ?d' --args '[{name: Jack, email: null}, 1]'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args[0])
		},
	}
	addArgsFlag(cmd)
	return cmd
}

func runQuery(cmd *cobra.Command, arg string) error {
	template, args, err := templateInput(cmd, arg)
	if err != nil {
		return err
	}
	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(cmd.Context(), template, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return renderRows(cmd.OutOrStdout(), rows)
}

func runExec(cmd *cobra.Command, arg string) error {
	template, args, err := templateInput(cmd, arg)
	if err != nil {
		return err
	}
	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	res, err := db.Exec(cmd.Context(), template, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s affected\n", countOf("row", n))
	return nil
}

func renderRows(w io.Writer, rows database.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	var results []table.Row
	for rows.Next() {
		values, err := database.ScanValues(rows, len(cols))
		if err != nil {
			return err
		}
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)
	t.AppendRows(results)
	t.Render()

	_, _ = fmt.Fprintf(w, "(%s)\n", countOf("row", int64(len(results))))
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
