package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/pkg/utils"
)

const usersCollection = "users"

// MongoUserRepository persists user aggregates in a single MongoDB
// collection. Username and email carry unique indexes; everything else in
// the document is owned by the aggregate.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository returns a repository over db's users collection.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique and secondary indexes the query paths
// rely on. Called on startup after Mongo has connected.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_username_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "last_login_at", Value: -1}},
			Options: options.Index().SetName("idx_last_login_at"),
		},
		{
			Keys:    bson.D{{Key: "cycles.start_date", Value: -1}},
			Options: options.Index().SetName("idx_cycles_start_date"),
		},
		{
			Keys:    bson.D{{Key: "daily_entries.date", Value: -1}},
			Options: options.Index().SetName("idx_daily_entries_date"),
		},
	}

	for _, m := range indexes {
		if _, err := r.col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &user, nil
}

// FindByID loads the aggregate by its document id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByUsername loads the aggregate by username, case-insensitively.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": utils.NormalizeUsername(username)})
}

// FindByEmail loads the aggregate by email, case-insensitively.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// Save validates and upserts the aggregate. Duplicate-key errors from the
// unique indexes are translated into ConflictError; other store failures
// surface as internal errors.
func (r *MongoUserRepository) Save(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
	}
	user.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &apperrors.ConflictError{Field: duplicateKeyField(err)}
		}
		return apperrors.Internal(err)
	}
	return nil
}

// UsernameExists reports whether any user holds the username.
func (r *MongoUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": utils.NormalizeUsername(username)})
}

// EmailExists reports whether any user holds the email.
func (r *MongoUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return count > 0, nil
}

// duplicateKeyField extracts which unique field collided from the index name
// embedded in the driver's duplicate-key error message.
func duplicateKeyField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_email_unique"), strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "idx_username_unique"), strings.Contains(msg, "username"):
		return "username"
	default:
		return "username"
	}
}
