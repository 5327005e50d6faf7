// Package mongo is the document-store backend selected with DB_DRIVER=mongo.
// Integer ids come from a counters collection so records look the same as in Postgres.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	usersCollection         = "users"
	consultationsCollection = "consultations"
	countersCollection      = "counters"
)

// Store provides MongoDB-backed persistence.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

type userDoc struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	CreatedAt    time.Time `bson:"created_at"`
	IsActive     bool      `bson:"is_active"`
}

type consultationDoc struct {
	ID            int64     `bson:"_id"`
	PatientID     int64     `bson:"patient_id"`
	DoctorID      int64     `bson:"doctor_id"`
	ScheduledTime time.Time `bson:"scheduled_time"`
	Status        string    `bson:"status"`
	Notes         *string   `bson:"notes"`
	Diagnosis     *string   `bson:"diagnosis"`
	CreatedAt     time.Time `bson:"created_at"`
}

// NewStore connects to uri, selects database, and ensures indexes exist.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = s.db.Collection(consultationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
		{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create consultation indexes: %w", err)
	}
	return nil
}

func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	id, err := s.nextID(ctx, usersCollection)
	if err != nil {
		return models.User{}, err
	}
	doc := userDoc{
		ID:           id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		IsActive:     user.IsActive,
	}
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	docs, err := s.findUsers(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (s *Store) findUsers(ctx context.Context, filter bson.M) ([]userDoc, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return docs, nil
}

func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) (models.User, error) {
	var doc userDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": active}}, opts).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("set user active: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	n, err := s.db.Collection(usersCollection).CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.Role(d.Role),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		CreatedAt:    d.CreatedAt.UTC(),
		IsActive:     d.IsActive,
	}
}
