package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// TaskStore stores and retrieves TaskDocuments from a PostgreSQL database.
type TaskStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (s *TaskStore) Init(ctx context.Context) error {
	const op errors.Op = "TaskStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS tasks (
		sequence     BIGSERIAL     NOT NULL,
		id           VARCHAR(40)   NOT NULL,

		user_id      TEXT          NOT NULL,
		date_key     TEXT          NOT NULL,
		task         JSONB         NOT NULL,

		created_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS task_id_idx ON tasks (id);
	CREATE INDEX IF NOT EXISTS task_date_key_user_id_idx ON tasks (date_key, user_id);
	CREATE INDEX IF NOT EXISTS task_task_id_user_id_idx ON tasks ((task->'id'), user_id);
	CREATE INDEX IF NOT EXISTS task_user_id_idx ON tasks (user_id);`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// Create inserts doc under a new UUID and returns the id.
func (s *TaskStore) Create(ctx context.Context, doc todocal.TaskDocument) (string, error) {
	const op errors.Op = "TaskStore.Create"

	taskJS, err := json.Marshal(doc.Task)
	if err != nil {
		return "", errors.E(op, errors.Invalid, err)
	}

	id := uuid.New().String()
	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO tasks
		(id, user_id, date_key, task, created_at, updated_at)
	VALUES
		($1, $2, $3, $4::jsonb, $5, $6)`,
		id, doc.UserID, doc.DateKey, string(taskJS), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return "", errors.E(op, doc.UserID, pgErr(err))
	}

	return id, nil
}

// Update replaces the payload of the oldest task in the bucket whose id
// matches task's id.
func (s *TaskStore) Update(ctx context.Context, userID todocal.UserID, dateKey string, task todocal.Task, now time.Time) error {
	const op errors.Op = "TaskStore.Update"

	taskID, ok := task.IDJSON()
	if !ok {
		return errors.E(op, userID, errors.Invalid, "task has no id")
	}
	taskJS, err := json.Marshal(task)
	if err != nil {
		return errors.E(op, userID, errors.Invalid, err)
	}

	res, err := s.DB.ExecContext(ctx, `
	UPDATE tasks
	SET task = $4::jsonb, updated_at = $5
	WHERE id = (
		SELECT id FROM tasks
		WHERE user_id = $1 AND date_key = $2 AND task->'id' = $3::jsonb
		ORDER BY sequence
		LIMIT 1
	)`, userID, dateKey, taskID, string(taskJS), now)
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}
	if n == 0 {
		return errors.E(op, userID, errors.NotExist, "task not found")
	}

	return nil
}

// Delete removes one of the user's documents by id.
func (s *TaskStore) Delete(ctx context.Context, userID todocal.UserID, id string) error {
	const op errors.Op = "TaskStore.Delete"

	res, err := s.DB.ExecContext(ctx, `
	DELETE FROM tasks
	WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}
	if n == 0 {
		return errors.E(op, userID, errors.NotExist, "task not found")
	}

	return nil
}

// ListForUser returns all of a user's tasks in insertion order.
func (s *TaskStore) ListForUser(ctx context.Context, userID todocal.UserID) ([]todocal.TaskDocument, error) {
	return s.list(ctx, `
		WHERE user_id = $1
		ORDER BY sequence`, userID)
}

// ListBucket returns a user's tasks for one date key, sorted by task id in
// BSON type order: no id, numbers, strings, objects, arrays, booleans.
// Strings compare bytewise.
func (s *TaskStore) ListBucket(ctx context.Context, userID todocal.UserID, dateKey string) ([]todocal.TaskDocument, error) {
	return s.list(ctx, `
		WHERE user_id = $1 AND date_key = $2
		ORDER BY
			CASE COALESCE(jsonb_typeof(task->'id'), 'null')
				WHEN 'null' THEN 0
				WHEN 'number' THEN 1
				WHEN 'string' THEN 2
				WHEN 'object' THEN 3
				WHEN 'array' THEN 4
				ELSE 5
			END,
			CASE WHEN jsonb_typeof(task->'id') = 'number' THEN (task->>'id')::numeric END,
			CASE WHEN jsonb_typeof(task->'id') = 'string' THEN (task->>'id') COLLATE "C" END,
			task->'id',
			sequence`, userID, dateKey)
}

func (s *TaskStore) list(ctx context.Context, expr string, vals ...interface{}) ([]todocal.TaskDocument, error) {
	query := fmt.Sprintf(`
	SELECT
		id,
		user_id,
		date_key,
		task,
		created_at,
		updated_at
	FROM tasks
	%s`, expr)

	rows, err := s.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, errors.E(errors.Op("TaskStore.list"), pgErr(err))
	}
	defer rows.Close()

	docs := []todocal.TaskDocument{}
	for rows.Next() {
		var doc todocal.TaskDocument
		var taskJS []byte
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.DateKey,
			&taskJS,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(taskJS, &doc.Task); err != nil {
			return nil, errors.E(errors.Internal, "decode task", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return docs, nil
}
