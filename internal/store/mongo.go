package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"proximity-service/internal/models"
)

type mongoUserStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoUserStore wraps the users collection and ensures the unique
// indexes on email and phone exist.
func NewMongoUserStore(ctx context.Context, client *mongo.Client, dbName string) (UserStore, error) {
	users := client.Database(dbName).Collection("users")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "emailAddress", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := users.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, wrapMongoError(err)
	}

	return &mongoUserStore{client: client, users: users}, nil
}

func (s *mongoUserStore) Get(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		return nil, wrapMongoError(err)
	}
	return &user, nil
}

func (s *mongoUserStore) UpdateField(ctx context.Context, uid string, field string, value any) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{field: value, "updatedAt": time.Now()}},
	)
	if err != nil {
		return wrapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return wrapMongoError(err)
	}
	return nil
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"emailAddress": email}).Decode(&user); err != nil {
		return nil, wrapMongoError(err)
	}
	return &user, nil
}

func (s *mongoUserStore) ListAll(ctx context.Context) ([]*models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapMongoError(err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapMongoError(err)
	}
	return users, nil
}

// RunTransaction runs fn inside a mongo session transaction. The
// driver re-runs fn on transient transaction errors, which gives the
// retry-on-write-conflict semantics the relationship service assumes.
func (s *mongoUserStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return wrapMongoError(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&mongoTx{store: s, ctx: sc})
	})
	return wrapMongoError(err)
}

// mongoTx scopes reads and writes to the session context of one
// transaction.
type mongoTx struct {
	store *mongoUserStore
	ctx   mongo.SessionContext
}

func (t *mongoTx) Get(uid string) (*models.User, error) {
	return t.store.Get(t.ctx, uid)
}

func (t *mongoTx) UpdateField(uid string, field string, value any) error {
	return t.store.UpdateField(t.ctx, uid, field, value)
}
