package domain

import (
	"context"
	"time"
)

// AccessCredential is the durable result of a public-token exchange: the
// aggregator access token plus the item identifier of the linked
// institution connection. Persisted under (UserID, ItemID); write-only from
// the client's perspective, the access token is never returned through the
// API after creation.
type AccessCredential struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	ItemID      string    `bson:"item_id" json:"item_id"`
	AccessToken string    `bson:"access_token" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// CredentialRepository persists access credentials keyed by
// (user_id, item_id). Upsert overwrites any prior credential for the same
// item: re-linking the same institution replaces, never duplicates.
type CredentialRepository interface {
	Upsert(ctx context.Context, cred *AccessCredential) error
	GetByItem(ctx context.Context, userID, itemID string) (*AccessCredential, error)
	ListByUser(ctx context.Context, userID string) ([]*AccessCredential, error)
	DeleteByUser(ctx context.Context, userID string) error
}
