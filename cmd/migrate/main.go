// Command migrate applies the payment schema to DB_ADDR. It is idempotent.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"folio/internal/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "drop the payment tables instead of creating them")
	flag.Parse()

	_ = godotenv.Load()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		logger.Fatal("DB_ADDR is not set")
	}

	conn, err := sql.Open("postgres", addr)
	if err != nil {
		logger.Fatalw("open database", "error", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stmt := db.Schema
	if *down {
		stmt = db.DropSchema
	}
	if err := apply(ctx, conn, stmt); err != nil {
		logger.Fatalw("migration failed", "down", *down, "error", err)
	}
	logger.Infow("migration applied", "down", *down)
}

func apply(ctx context.Context, conn *sql.DB, stmt string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return err
	}
	return tx.Commit()
}
