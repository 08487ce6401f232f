// db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Open connects to a Turso/libsql database and verifies the connection
func Open(ctx context.Context, databaseURL, authToken string) (*sql.DB, error) {
	dsn, err := connectionURL(databaseURL, authToken)
	if err != nil {
		return nil, err
	}

	database, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", databaseURL, err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(25)
	database.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database, nil
}

// connectionURL adds authToken to the query of databaseURL, keeping any
// parameters already there
func connectionURL(databaseURL, authToken string) (string, error) {
	if authToken == "" {
		return databaseURL, nil
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	query := u.Query()
	query.Set("authToken", authToken)
	u.RawQuery = query.Encode()
	return u.String(), nil
}
