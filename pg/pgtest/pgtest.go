// Package pgtest creates throwaway PostgreSQL databases for the store and
// end-to-end tests. Databases older than a few minutes are dropped the next
// time a test opens one.
package pgtest

import (
	"context"
	"database/sql"
	"math/rand"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/lib/pq"
)

var (
	// DefaultURL is the postgres server test databases are created on. It can
	// be overridden with the PGTEST_URL environment variable.
	DefaultURL = "postgres://localhost/postgres?sslmode=disable"

	gcDur = 3 * time.Minute

	// DefaultSchema is a SQL query that's executed when a new database is
	// created in NewDB. You can put SQL in here that you want to be executed
	// before every test.
	DefaultSchema = ""
)

// NewDB creates a connection to a fresh PostgreSQL database for testing. The
// connection is closed when the test finishes; the database itself is left
// for a later test to garbage collect.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	ctx := context.Background()

	db, err := open(ctx, os.Getenv("PGTEST_URL"), DefaultSchema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func open(ctx context.Context, baseURL, schema string) (*sql.DB, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	ctldb, err := sql.Open("postgres", baseURL)
	if err != nil {
		return nil, errors.E(errors.Op("pgtest.create"), err)
	}
	defer ctldb.Close()

	if err = gcdbs(ctldb); err != nil {
		return nil, err
	}

	dbname := pickName("db")
	u.Path = "/" + dbname
	_, err = ctldb.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbname))
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, errors.E(errors.Op("pgtest.open"), err)
	}
	if schema != "" {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func pickName(prefix string) (s string) {
	const chars = "abcdefghijklmnopqrstuvwxyz"
	for i := 0; i < 10; i++ {
		s += string(chars[rand.Intn(len(chars))])
	}
	return formatPrefix(prefix, time.Now()) + s
}

func formatPrefix(prefix string, t time.Time) string {
	return "todocal_pgtest_" + prefix + "_" + t.UTC().Format("20060102150405") + "Z_"
}

func gcdbs(db *sql.DB) error {
	gcTime := time.Now().Add(-gcDur)
	const q = `
		SELECT datname FROM pg_database
		WHERE datname LIKE 'todocal_pgtest_%' AND datname < $1`
	rows, err := db.Query(q, formatPrefix("db", gcTime))
	if err != nil {
		return err
	}
	var names []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return err
		}
		names = append(names, name)
	}
	if rows.Err() != nil {
		return rows.Err()
	}
	for i, name := range names {
		if i > 5 {
			break // drop up to five per test
		}
		go db.Exec("DROP DATABASE " + pq.QuoteIdentifier(name))
	}
	return nil
}
