package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

const usersCollection = "users"

// UserRepository persists the local-mode user directory in MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes on uiu_id and email. Call once at
// startup; duplicate-key errors from Create depend on them.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uiu_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID           string `bson:"_id"`
	UIUID        string `bson:"uiu_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	IsActive     bool   `bson:"is_active"`
	IsVerified   bool   `bson:"is_verified"`
	Phone        string `bson:"phone,omitempty"`
	Avatar       string `bson:"avatar,omitempty"`
}

func (r *UserRepository) Create(ctx context.Context, rec *ports.UserRecord) (*ports.UserRecord, error) {
	doc := toMongoUser(rec)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Field: duplicateKeyField(err)}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return fromMongoUser(doc), nil
}

// duplicateKeyField reports which unique index rejected the insert. The
// server names the index in the error message ("index: email_1 dup key");
// anything not matching the email index is the uiu_id index.
func duplicateKeyField(err error) string {
	if strings.Contains(err.Error(), "email_1") {
		return "email"
	}
	return "uiuId"
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*ports.UserRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUIUID(ctx context.Context, uiuID string) (*ports.UserRecord, error) {
	return r.findOne(ctx, bson.M{"uiu_id": uiuID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*ports.UserRecord, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_verified": true}})
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*ports.UserRecord, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(mu), nil
}

func toMongoUser(rec *ports.UserRecord) mongoUser {
	return mongoUser{
		ID:           rec.ID,
		UIUID:        rec.UIUID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Role:         string(rec.Role),
		IsActive:     rec.IsActive,
		IsVerified:   rec.IsVerified,
		Phone:        rec.Phone,
		Avatar:       rec.Avatar,
	}
}

func fromMongoUser(mu mongoUser) *ports.UserRecord {
	return &ports.UserRecord{
		User: domain.User{
			ID:         mu.ID,
			UIUID:      mu.UIUID,
			Name:       mu.Name,
			Email:      mu.Email,
			Role:       domain.Role(mu.Role),
			IsActive:   mu.IsActive,
			IsVerified: mu.IsVerified,
			Phone:      mu.Phone,
			Avatar:     mu.Avatar,
		},
		PasswordHash: mu.PasswordHash,
	}
}
