// Command cmd_cleanup_sessions deletes expired and revoked login sessions with
// plain database/sql, so it can run from a minimal maintenance image.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"ledger/pkg/config"
	"ledger/pkg/database"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	email := flag.String("email", "", "only clean sessions of this user (optional)")
	dry := flag.Bool("dry-run", true, "Preview actions without modifying the DB")
	yes := flag.Bool("yes", false, "Confirm destructive action when dry-run=false")
	all := flag.Bool("all", false, "Also delete live sessions (logs the selected users out)")
	flag.Parse()

	cfg, err := config.Load("", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	driver := "sqlite3"
	if database.IsPostgres(cfg.Database.DSN) {
		driver = "postgres"
	}
	db, err := sql.Open(driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	where, args := sessionFilter(*all, *email, time.Now().UTC())
	n, err := countSessions(db, where, args)
	if err != nil {
		log.Fatalf("count sessions: %v", err)
	}
	fmt.Printf("sessions matching: %d\n", n)
	if *dry {
		fmt.Println("dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return
	}
	if !*yes {
		fmt.Println("Destructive operation. Pass --yes to confirm execution. Aborting.")
		return
	}
	deleted, err := deleteSessions(db, where, args)
	if err != nil {
		log.Fatalf("delete sessions: %v", err)
	}
	fmt.Printf("cleanup done: sessions deleted=%d\n", deleted)
}

// sessionFilter builds the WHERE clause. Without all only revoked or expired
// sessions match.
func sessionFilter(all bool, email string, now time.Time) (string, []any) {
	var conds []string
	var args []any
	if !all {
		conds = append(conds, "(revoked = $1 OR expires_at <= $2)")
		args = append(args, true, now)
	}
	if email != "" {
		conds = append(conds, fmt.Sprintf("user_id IN (SELECT id FROM users WHERE email = $%d)", len(args)+1))
		args = append(args, email)
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}

func countSessions(db *sql.DB, where string, args []any) (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT count(*) FROM sessions WHERE `+where, args...).Scan(&n)
	return n, err
}

func deleteSessions(db *sql.DB, where string, args []any) (int64, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE `+where, args...)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
