package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// CompletionStore keeps each user's completion state as a single JSONB row.
type CompletionStore struct {
	DB *sql.DB
}

// Init sets up the database schema.
func (s *CompletionStore) Init(ctx context.Context) error {
	const op errors.Op = "CompletionStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS completions (
		user_id      TEXT          NOT NULL,
		type         TEXT          NOT NULL DEFAULT 'completions',
		data         JSONB         NOT NULL,
		updated_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS completions_user_id_idx ON completions (user_id);`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// Save upserts the user's completions, replacing any previous data.
func (s *CompletionStore) Save(ctx context.Context, doc todocal.CompletionsDocument) error {
	const op errors.Op = "CompletionStore.Save"

	js, err := json.Marshal(doc.Data)
	if err != nil {
		return errors.E(op, doc.UserID, errors.Invalid, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO completions (user_id, type, data, updated_at)
	VALUES ($1, $2, $3::jsonb, $4)
	ON CONFLICT (user_id) DO UPDATE
	SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		doc.UserID, todocal.CompletionsType, string(js), doc.UpdatedAt)
	if err != nil {
		return errors.E(op, doc.UserID, pgErr(err))
	}

	return nil
}

// Get retrieves the user's completions.
func (s *CompletionStore) Get(ctx context.Context, userID todocal.UserID) (todocal.CompletionsDocument, error) {
	const op errors.Op = "CompletionStore.Get"

	doc := todocal.CompletionsDocument{UserID: userID}
	var js []byte

	err := s.DB.QueryRowContext(ctx, `
	SELECT type, data, updated_at
	FROM completions
	WHERE user_id = $1`, userID).Scan(&doc.Type, &js, &doc.UpdatedAt)
	if err != nil {
		return doc, errors.E(op, userID, pgErr(err))
	}

	if err := json.Unmarshal(js, &doc.Data); err != nil {
		return doc, errors.E(op, userID, errors.Internal, err)
	}

	return doc, nil
}
