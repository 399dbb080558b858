package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jimiolaniyan/gosocial/storage"
)

const accountsCollection = "accounts"

type mongoAccountRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

type mongoAccount struct {
	ID       int64  `bson:"_id"`
	Username string `bson:"username"`
	Password string `bson:"password"`
}

func NewMongoAccountRepository(db *mongo.Database) Repository {
	return &mongoAccountRepository{db: db, collection: db.Collection(accountsCollection)}
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"_id": int64(id)})
}

func (m *mongoAccountRepository) FindByName(ctx context.Context, username string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"username": username})
}

func (m *mongoAccountRepository) FindByCredentials(ctx context.Context, username, password string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"username": username, "password": password})
}

func (m *mongoAccountRepository) Exists(ctx context.Context, id ID) (bool, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": int64(id)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (m *mongoAccountRepository) Store(ctx context.Context, acc *Account) error {
	id, err := storage.NextSequence(ctx, m.db, accountsCollection)
	if err != nil {
		return err
	}

	doc := mongoAccount{ID: id, Username: acc.Username, Password: acc.Password}
	if _, err = m.collection.InsertOne(ctx, &doc); err != nil {
		return err
	}
	acc.ID = ID(id)
	return nil
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, filter bson.M) (*Account, error) {
	var doc mongoAccount
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Account{ID: ID(doc.ID), Username: doc.Username, Password: doc.Password}, nil
}
