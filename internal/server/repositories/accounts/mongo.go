package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	MongoCollection    = "accounts"
	mongoUsernameIndex = "accounts_username_key"
)

type accountDoc struct {
	ID              bson.ObjectID `bson:"_id"`
	Username        string        `bson:"username"`
	PasswordHash    string        `bson:"password_hash"`
	EncryptedSecret []byte        `bson:"encrypted_secret"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

func (d *accountDoc) toModel() *models.Account {
	return &models.Account{
		ID:              d.ID.Hex(),
		Username:        d.Username,
		PasswordHash:    d.PasswordHash,
		EncryptedSecret: d.EncryptedSecret,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

// documentStore is the slice of *mongo.Collection the repository needs.
type documentStore interface {
	insertOne(ctx context.Context, doc *accountDoc) error
	findOne(ctx context.Context, filter bson.M, out *accountDoc) error
	findOneAndUpdate(ctx context.Context, filter, update bson.M, out *accountDoc) error
	countDocuments(ctx context.Context, filter bson.M) (int64, error)
}

type collectionStore struct {
	c *mongo.Collection
}

func (s collectionStore) insertOne(ctx context.Context, doc *accountDoc) error {
	_, err := s.c.InsertOne(ctx, doc)
	return err
}

func (s collectionStore) findOne(ctx context.Context, filter bson.M, out *accountDoc) error {
	return s.c.FindOne(ctx, filter).Decode(out)
}

func (s collectionStore) findOneAndUpdate(ctx context.Context, filter, update bson.M, out *accountDoc) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
}

func (s collectionStore) countDocuments(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
}

type MongoRepository struct {
	store documentStore
	now   func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		store: collectionStore{c: db.Collection(MongoCollection)},
		now:   time.Now,
	}
}

// EnsureMongoIndexes creates the unique username index that arbitrates
// concurrent creates. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(MongoCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(mongoUsernameIndex),
	})
	if err != nil {
		return fmt.Errorf("mongo error: create index: %w", err)
	}
	return nil
}

func (r *MongoRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.store.countDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, mapMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var doc accountDoc
	if err := r.store.findOne(ctx, bson.M{"username": username}, &doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	var doc accountDoc
	if err := r.store.findOne(ctx, bson.M{"_id": oid}, &doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) Save(ctx context.Context, a *models.Account) (*models.Account, error) {
	now := r.now().UTC().Truncate(time.Millisecond)

	if a.ID == "" {
		doc := &accountDoc{
			ID:              bson.NewObjectID(),
			Username:        a.Username,
			PasswordHash:    a.PasswordHash,
			EncryptedSecret: a.EncryptedSecret,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.store.insertOne(ctx, doc); err != nil {
			return nil, mapMongoError(err)
		}
		return doc.toModel().Clone(), nil
	}

	oid, err := bson.ObjectIDFromHex(a.ID)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	update := bson.M{"$set": bson.M{
		"username":         a.Username,
		"password_hash":    a.PasswordHash,
		"encrypted_secret": a.EncryptedSecret,
		"updated_at":       now,
	}}
	var doc accountDoc
	if err := r.store.findOneAndUpdate(ctx, bson.M{"_id": oid}, update, &doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func mapMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrorNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, mongoUsernameIndex)
	default:
		return fmt.Errorf("mongo error: %w", err)
	}
}
