package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tshirt-bundle/logger"
)

// DB holds the database connection. It stays nil when the card catalog is
// served from a file.
var DB *sql.DB

// InitDB opens and pings the Postgres connection described by connStr
func InitDB(ctx context.Context, connStr string, log logger.ILogger) error {
	if connStr == "" {
		return fmt.Errorf("database connection string not set. Set DATABASE_URL")
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = conn
	log.Info("db", "database connection established", nil)
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}
