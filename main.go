package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ledger/pkg/config"
	"ledger/pkg/currency"
	"ledger/pkg/database"
	"ledger/pkg/logging"
	"ledger/pkg/server"
	"ledger/pkg/session"
	"ledger/pkg/view"
	"ledger/web"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/gorm"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load("", "")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// Support a lightweight migrate command: `ledger migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(args) > 0 && args[0] == "migrate" {
		db, err := initDB(cfg.Database, false)
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := migrateModels(db); err != nil {
			return err
		}
		logger.Info("migration completed")
		return nil
	}

	db, err := initDB(cfg.Database, cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sessions, err := session.NewStore(db, cfg.Session)
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		logger.Warn("session.secret not set; sessions will not survive a restart")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if n, err := sessions.Purge(ctx); err != nil {
		logger.Warn("purging stale sessions failed", "error", err)
	} else if n > 0 {
		logger.Info("purged stale sessions", "count", n)
	}

	html, watchDir, err := view.Load(web.Templates, cfg.Templates.Dir, "templates/multi", currency.FuncMap(currency.ZeroPlaceholder))
	if err != nil {
		return err
	}
	if cfg.Templates.Reload && watchDir != "" {
		if err := html.Watch(ctx, watchDir); err != nil {
			logger.Warn("template watch disabled", "error", err)
		}
	}

	r := newRouter(db, sessions, html, logger)
	return server.Run(ctx, server.New(cfg.Server.Addr, r), logger)
}

func newRouter(db *gorm.DB, sessions *session.Store, html render.HTMLRender, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	r.HTMLRender = html
	setupRoutes(r, newApp(db, sessions))
	return r
}
