// Package main is the entry point for the undertow CLI.
package main

import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/undertow-db/undertow/cmd/undertow/commands"
)

func main() {
	commands.Execute()
}
