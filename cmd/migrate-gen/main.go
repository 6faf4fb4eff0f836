// Command migrate-gen generates the SQL migration that creates the migration history table.
//
// Usage:
//
//	go run github.com/getpup/modular/cmd/migrate-gen -output database/schema -filename history.sql
//
// Or with go generate:
//
//	//go:generate go run github.com/getpup/modular/cmd/migrate-gen -output database/schema
//
// Generate migrations for different database adapters:
//
//	go run github.com/getpup/modular/cmd/migrate-gen -adapter postgres -output database/schema
//	go run github.com/getpup/modular/cmd/migrate-gen -adapter mysql -output database/schema
//	go run github.com/getpup/modular/cmd/migrate-gen -adapter sqlite -output database/schema
//
// Customize the table name:
//
//	go run github.com/getpup/modular/cmd/migrate-gen -table app.schema_history
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/getpup/modular/pkg/migrations"
	"github.com/getpup/modular/store/sqlstore"
)

func main() {
	config := migrations.DefaultConfig()

	var (
		adapter        = flag.String("adapter", "postgres", "Database adapter: postgres, mysql, or sqlite")
		outputFolder   = flag.String("output", config.OutputFolder, "Output folder for migration file")
		outputFilename = flag.String("filename", "", "Output filename (default: timestamp-based)")
		table          = flag.String("table", config.Table, "Name of the migration history table")
	)

	flag.Parse()

	config.OutputFolder = *outputFolder
	config.Table = *table
	if *outputFilename != "" {
		config.OutputFilename = *outputFilename
	}

	dialect, err := sqlstore.ParseDialect(*adapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := migrations.Generate(dialect, &config); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s migration: %s/%s\n", dialect, config.OutputFolder, config.OutputFilename)
}
