package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"ledger/models"
	"ledger/pkg/account"
	"ledger/pkg/config"
	"ledger/pkg/database"

	"github.com/badoux/checkmail"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <email> <password>")
		os.Exit(2)
	}
	email := os.Args[1]
	password := os.Args[2]

	if err := checkmail.ValidateFormat(email); err != nil {
		log.Fatalf("invalid email %q: %v", email, err)
	}
	if len(password) < account.MinPasswordLength {
		log.Fatalf("password too short (min %d)", account.MinPasswordLength)
	}

	cfg, err := config.Load("", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db, &models.User{}); err != nil {
		log.Printf("migration warning: %v", err)
	}

	user, err := account.NewService(db, 0).Register(context.Background(), email, password)
	if errors.Is(err, account.ErrEmailTaken) {
		fmt.Printf("user %s already exists\n", email)
		return
	}
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d\n", user.Email, user.ID)
}
