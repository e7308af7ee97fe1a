package pg

import (
	"context"
	"database/sql"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// UserStore stores user profiles, including mirrored avatar images, in a
// PostgreSQL database.
type UserStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (u *UserStore) Init(ctx context.Context) error {
	const op errors.Op = "UserStore.Init"

	_, err := u.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS users (
		sequence             BIGSERIAL     NOT NULL,
		user_id              TEXT          NOT NULL,

		email                TEXT          NOT NULL DEFAULT '',
		name                 TEXT          NOT NULL DEFAULT '',
		google_picture_url   TEXT          NOT NULL DEFAULT '',

		image_data           BYTEA,
		image_content_type   TEXT,
		image_hash           TEXT,
		image_size           BIGINT,

		created_at           TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS user_id_idx ON users (user_id);`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// Create inserts a new profile. It fails with an Exist error if the user
// already has one.
func (u *UserStore) Create(ctx context.Context, user todocal.User) error {
	const op errors.Op = "UserStore.Create"

	data, contentType, hash, size := imageColumns(user.ProfileImage)

	_, err := u.DB.ExecContext(ctx, `
	INSERT INTO users (
		user_id, email, name, google_picture_url,
		image_data, image_content_type, image_hash, image_size,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Email, user.Name, user.GooglePictureURL,
		data, contentType, hash, size,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return errors.E(op, user.ID, pgErr(err))
	}

	return nil
}

// SetImage replaces the user's stored image and the picture URL it came from.
// A nil img clears the image.
func (u *UserStore) SetImage(ctx context.Context, userID todocal.UserID, pictureURL string, img *todocal.ProfileImage, now time.Time) error {
	const op errors.Op = "UserStore.SetImage"

	data, contentType, hash, size := imageColumns(img)

	res, err := u.DB.ExecContext(ctx, `
	UPDATE users
	SET google_picture_url = $2,
		image_data = $3,
		image_content_type = $4,
		image_hash = $5,
		image_size = $6,
		updated_at = $7
	WHERE user_id = $1`,
		userID, pictureURL, data, contentType, hash, size, now)
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.E(op, userID, pgErr(err))
	}
	if n == 0 {
		return errors.E(op, userID, errors.NotExist)
	}

	return nil
}

// GetByID retrieves a User by ID.
func (u *UserStore) GetByID(ctx context.Context, userID todocal.UserID) (todocal.User, error) {
	const op errors.Op = "UserStore.GetByID"

	var user todocal.User
	var data []byte
	var contentType, hash sql.NullString
	var size sql.NullInt64

	err := u.DB.QueryRowContext(ctx, `
		SELECT
			user_id,
			email,
			name,
			google_picture_url,
			image_data,
			image_content_type,
			image_hash,
			image_size,
			created_at,
			updated_at
		FROM users
		WHERE user_id = $1
	`, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.GooglePictureURL,
		&data,
		&contentType,
		&hash,
		&size,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return user, errors.E(op, userID, pgErr(err))
	}

	if len(data) > 0 {
		user.ProfileImage = &todocal.ProfileImage{
			Data:        data,
			ContentType: contentType.String,
			Hash:        hash.String,
			Size:        size.Int64,
		}
	}

	return user, nil
}

// imageColumns splits img into the users table's image columns, all NULL
// when img is nil.
func imageColumns(img *todocal.ProfileImage) (data interface{}, contentType, hash sql.NullString, size sql.NullInt64) {
	if img == nil {
		return nil, contentType, hash, size
	}
	return img.Data,
		sql.NullString{String: img.ContentType, Valid: true},
		sql.NullString{String: img.Hash, Valid: true},
		sql.NullInt64{Int64: img.Size, Valid: true}
}
