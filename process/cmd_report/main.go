package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ledger/pkg/config"
	"ledger/pkg/database"
	"ledger/process/report"
)

func main() {
	email := flag.String("email", "", "user e-mail to report for")
	month := flag.String("month", time.Now().UTC().Format(report.MonthLayout), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching rows")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "--email is required")
		os.Exit(2)
	}
	cfg, err := config.Load("", "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer database.Close(db)

	s, err := report.Monthly(context.Background(), db, *email, *month)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := report.Write(os.Stdout, s, *list); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
