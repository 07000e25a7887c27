// Package main provides the entry point for the tabsql CLI.
package main

import (
	"os"

	"github.com/raphaelgruber/tabsql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
