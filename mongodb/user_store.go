package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// UserStore stores user profiles, with the mirrored avatar embedded as binary.
type UserStore struct {
	DB *mongo.Database
}

type userDoc struct {
	UserID           string    `bson:"userId"`
	Email            string    `bson:"email"`
	Name             string    `bson:"name"`
	ProfileImage     *imageDoc `bson:"profileImage"`
	GooglePictureURL string    `bson:"googlePictureUrl"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

type imageDoc struct {
	Data        []byte `bson:"data"`
	ContentType string `bson:"contentType"`
	Hash        string `bson:"hash"`
	Size        int64  `bson:"size"`
}

func toImageDoc(img *todocal.ProfileImage) *imageDoc {
	if img == nil {
		return nil
	}
	return &imageDoc{
		Data:        img.Data,
		ContentType: img.ContentType,
		Hash:        img.Hash,
		Size:        img.Size,
	}
}

func (u *UserStore) coll() *mongo.Collection {
	return u.DB.Collection(UsersCollection)
}

// Init creates the unique userId index.
func (u *UserStore) Init(ctx context.Context) error {
	const op errors.Op = "UserStore.Init"

	_, err := u.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.E(op, mongoErr(err))
	}
	return nil
}

// Create inserts a profile. The unique index turns a second insert for the
// same user into an Exist error.
func (u *UserStore) Create(ctx context.Context, user todocal.User) error {
	const op errors.Op = "UserStore.Create"

	_, err := u.coll().InsertOne(ctx, userDoc{
		UserID:           string(user.ID),
		Email:            user.Email,
		Name:             user.Name,
		ProfileImage:     toImageDoc(user.ProfileImage),
		GooglePictureURL: user.GooglePictureURL,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	})
	if err != nil {
		return errors.E(op, user.ID, mongoErr(err))
	}
	return nil
}

// SetImage replaces the stored image and picture URL. A nil img stores null.
func (u *UserStore) SetImage(ctx context.Context, userID todocal.UserID, pictureURL string, img *todocal.ProfileImage, now time.Time) error {
	const op errors.Op = "UserStore.SetImage"

	res, err := u.coll().UpdateOne(ctx,
		bson.M{"userId": string(userID)},
		bson.M{"$set": bson.M{
			"profileImage":     toImageDoc(img),
			"googlePictureUrl": pictureURL,
			"updatedAt":        now,
		}},
	)
	if err != nil {
		return errors.E(op, userID, mongoErr(err))
	}
	if res.MatchedCount == 0 {
		return errors.E(op, userID, errors.NotExist)
	}
	return nil
}

// GetByID retrieves a User by ID.
func (u *UserStore) GetByID(ctx context.Context, userID todocal.UserID) (todocal.User, error) {
	const op errors.Op = "UserStore.GetByID"

	var d userDoc
	err := u.coll().FindOne(ctx, bson.M{"userId": string(userID)}).Decode(&d)
	if err != nil {
		return todocal.User{}, errors.E(op, userID, mongoErr(err))
	}

	user := todocal.User{
		ID:               todocal.UserID(d.UserID),
		Email:            d.Email,
		Name:             d.Name,
		GooglePictureURL: d.GooglePictureURL,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.ProfileImage != nil && len(d.ProfileImage.Data) > 0 {
		user.ProfileImage = &todocal.ProfileImage{
			Data:        d.ProfileImage.Data,
			ContentType: d.ProfileImage.ContentType,
			Hash:        d.ProfileImage.Hash,
			Size:        d.ProfileImage.Size,
		}
	}
	return user, nil
}
