package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// dsnParams are the driver options every connection needs. parseTime
// makes TIMESTAMP columns scan into time.Time and loc=UTC matches the
// UTC_TIMESTAMP() writes of the portion state machine. clientFoundRows
// makes UPDATE report matched rows instead of changed rows: assign,
// complete and the catalog update all decide success by RowsAffected,
// and rewriting a row with identical values must not look like a
// missing row.
const dsnParams = "charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true"

// Connection pool sizing. The listing endpoints fan out into
// aggregate subqueries, so a modest pool with recycled connections
// is enough; portion claims are single short statements.
const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
)

// buildDSN assembles the driver DSN. The password separator is
// omitted entirely when the password is empty, which the driver
// treats differently from an empty password.
func buildDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = user + ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", auth, host, port, name, dsnParams)
}

// Open connects to MySQL, configures the pool and verifies the
// connection with a ping.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", buildDSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
