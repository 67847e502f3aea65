package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
)

// CredentialRepository implements domain.CredentialRepository on MongoDB.
type CredentialRepository struct {
	items *mongo.Collection
}

var _ domain.CredentialRepository = (*CredentialRepository)(nil)

// NewCredentialRepository creates the repository and ensures the unique
// (user_id, item_id) index that makes Upsert a replace, never a duplicate.
func NewCredentialRepository(ctx context.Context, db *mongo.Database) (*CredentialRepository, error) {
	repo := &CredentialRepository{items: db.Collection(PlaidItemsCollection)}

	_, err := repo.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "item_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plaid_items indexes: %w", err)
	}
	return repo, nil
}

// Upsert implements domain.CredentialRepository.
func (r *CredentialRepository) Upsert(ctx context.Context, cred *domain.AccessCredential) error {
	filter := bson.M{"user_id": cred.UserID, "item_id": cred.ItemID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.items.ReplaceOne(ctx, filter, cred, opts); err != nil {
		return fmt.Errorf("failed to upsert access credential: %w", err)
	}
	return nil
}

// GetByItem implements domain.CredentialRepository.
func (r *CredentialRepository) GetByItem(ctx context.Context, userID, itemID string) (*domain.AccessCredential, error) {
	var cred domain.AccessCredential
	err := r.items.FindOne(ctx, bson.M{"user_id": userID, "item_id": itemID}).Decode(&cred)
	if err == mongo.ErrNoDocuments {
		return nil, claritycash.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load access credential: %w", err)
	}
	return &cred, nil
}

// ListByUser implements domain.CredentialRepository.
func (r *CredentialRepository) ListByUser(ctx context.Context, userID string) ([]*domain.AccessCredential, error) {
	cursor, err := r.items.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list access credentials: %w", err)
	}
	defer cursor.Close(ctx)

	var creds []*domain.AccessCredential
	if err := cursor.All(ctx, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode access credentials: %w", err)
	}
	return creds, nil
}

// DeleteByUser implements domain.CredentialRepository. Used when an
// account is closed; unlinking individual items is not exposed yet.
func (r *CredentialRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.items.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete access credentials: %w", err)
	}
	return nil
}
