// Command ledger_single serves the single-tenant statement ledger.
package main

import (
	"context"
	"fmt"
	"os"

	"ledger/pkg/config"
	"ledger/pkg/currency"
	"ledger/pkg/database"
	"ledger/pkg/logging"
	"ledger/pkg/server"
	"ledger/pkg/view"
	"ledger/single"
	"ledger/web"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger_single:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("", "instance.db")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// `ledger_single migrate` creates the table and exits
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := single.Migrate(db); err != nil {
			return err
		}
		logger.Info("migration completed")
		return nil
	}
	if cfg.Database.AutoMigrate {
		if err := single.Migrate(db); err != nil {
			logger.Warn("migration incomplete", "error", err)
		}
	}

	html, watchDir, err := view.Load(web.Templates, cfg.Templates.Dir, "templates/single", currency.FuncMap(currency.DashPlaceholder))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Templates.Reload && watchDir != "" {
		if err := html.Watch(ctx, watchDir); err != nil {
			logger.Warn("template watch disabled", "error", err)
		}
	}

	r := single.NewRouter(db, html, logger)
	return server.Run(ctx, server.New(cfg.Server.Addr, r), logger)
}
