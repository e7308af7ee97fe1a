// Package pg stores tasks, completions and user profiles in PostgreSQL.
// Tasks and completions are kept as JSONB documents so their client-defined
// fields survive untouched.
package pg

import (
	"context"
	"database/sql"

	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/lib/pq"
)

// pgErr converts an error produced by lib/pq into a domain error.
// All sql statements in package pg should return errors wrapped by pgErr.
func pgErr(err error) error {
	if err == sql.ErrNoRows {
		return errors.E(errors.NotExist)
	}

	e, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch e.Code.Name() {
	case "unique_violation":
		return errors.E(errors.Exist, e.Message)
	case "query_canceled":
		return errors.E(context.Canceled)
	case "invalid_text_representation", "invalid_parameter_value":
		return errors.E(errors.Invalid, e.Message)
	default:
		return e
	}
}

// Init creates the schema for every store sharing db.
func Init(ctx context.Context, db *sql.DB) error {
	const op errors.Op = "pg.Init"

	for _, initStore := range []func(context.Context) error{
		(&TaskStore{DB: db}).Init,
		(&CompletionStore{DB: db}).Init,
		(&UserStore{DB: db}).Init,
	} {
		if err := initStore(ctx); err != nil {
			return errors.E(op, err)
		}
	}
	return nil
}
