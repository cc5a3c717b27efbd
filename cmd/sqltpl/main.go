// Command sqltpl renders and runs SQL query templates.
package main

import (
	"os"

	"github.com/Konsultn-Engineering/sqltpl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
