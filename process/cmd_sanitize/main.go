package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ledger/pkg/config"
	"ledger/pkg/database"
	"ledger/process/sanitize"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "Don't perform destructive actions; show what would be done")
	yes := flag.Bool("yes", false, "Confirm destructive action (required to actually truncate)")
	tables := flag.String("tables", "statements,sessions,users", "Comma-separated list of tables to truncate")
	flag.Parse()

	cfg, err := config.Load("", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	opts := sanitize.Options{Tables: sanitize.ParseTables(*tables), DryRun: *dryRun, Yes: *yes}
	if _, err := sanitize.Run(context.Background(), db, opts, os.Stdout); err != nil {
		log.Fatalf("truncate failed: %v", err)
	}
}
