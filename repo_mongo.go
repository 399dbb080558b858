package social

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jimiolaniyan/gosocial/auth"
	"github.com/jimiolaniyan/gosocial/storage"
)

const messagesCollection = "messages"

type mongoMessageRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

type dbMessageDoc struct {
	ID         int64  `bson:"_id"`
	PostedBy   int64  `bson:"posted_by"`
	Text       string `bson:"message_text"`
	PostedTime int64  `bson:"posted_time"`
}

func NewMongoMessageRepository(db *mongo.Database) Repository {
	return &mongoMessageRepository{db: db, collection: db.Collection(messagesCollection)}
}

func (m *mongoMessageRepository) FindByID(ctx context.Context, id MessageID) (*Message, error) {
	var doc dbMessageDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	msg := messageFromDoc(doc)
	return &msg, nil
}

func (m *mongoMessageRepository) FindAll(ctx context.Context) ([]Message, error) {
	return m.findMessagesBy(ctx, bson.M{})
}

func (m *mongoMessageRepository) FindByAuthor(ctx context.Context, accountID auth.ID) ([]Message, error) {
	return m.findMessagesBy(ctx, bson.M{"posted_by": int64(accountID)})
}

func (m *mongoMessageRepository) Store(ctx context.Context, msg *Message) error {
	id, err := storage.NextSequence(ctx, m.db, messagesCollection)
	if err != nil {
		return err
	}

	doc := docFromMessage(*msg)
	doc.ID = id
	if _, err = m.collection.InsertOne(ctx, &doc); err != nil {
		return err
	}
	msg.ID = MessageID(id)
	return nil
}

func (m *mongoMessageRepository) Update(ctx context.Context, msg *Message) error {
	doc := docFromMessage(*msg)
	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (m *mongoMessageRepository) Delete(ctx context.Context, id MessageID) (int64, error) {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *mongoMessageRepository) findMessagesBy(ctx context.Context, filter bson.M) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []dbMessageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, messageFromDoc(d))
	}
	return msgs, nil
}

func docFromMessage(m Message) dbMessageDoc {
	return dbMessageDoc{int64(m.ID), int64(m.PostedBy), m.Text, m.PostedTime}
}

func messageFromDoc(d dbMessageDoc) Message {
	return Message{MessageID(d.ID), auth.ID(d.PostedBy), d.Text, d.PostedTime}
}
