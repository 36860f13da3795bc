package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"ledger/pkg/account"
	"ledger/pkg/config"
	"ledger/pkg/database"
)

func main() {
	email := flag.String("email", "", "e-mail of the user to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *email == "" || *password == "" {
		log.Fatal("--email and --password are required")
	}

	cfg, err := config.Load("", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close(db)

	if err := account.NewService(db, 0).SetPassword(context.Background(), *email, *password); err != nil {
		log.Fatalf("reset failed: %v", err)
	}
	fmt.Printf("Password reset for user %s\n", *email)
}
