// Package mongodb holds the persistence layer: the shared client and the
// credential repository backing the linking pipeline.
package mongodb

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// PlaidItemsCollection persists access credentials, one document per
// (user_id, item_id). The logical layout mirrors
// users/{uid}/plaid/{item_id} -> {access_token, created_at}.
const PlaidItemsCollection = "plaid_items"

var (
	clientInstance *mongo.Client
	clientOnce     sync.Once
	dbInstance     *mongo.Database
	dbOnce         sync.Once
)

// InitMongoDB initializes the shared client and database handles. Call
// once at application startup.
func InitMongoDB(ctx context.Context, uri, dbName string) error {
	var err error
	clientOnce.Do(func() {
		log.Info().Str("db", dbName).Msg("initializing MongoDB client")

		opts := options.Client().
			ApplyURI(uri).
			SetConnectTimeout(10 * time.Second).
			SetMonitor(otelmongo.NewMonitor())

		client, connectErr := mongo.Connect(ctx, opts)
		if connectErr != nil {
			err = connectErr
			return
		}

		if pingErr := client.Ping(ctx, readpref.Primary()); pingErr != nil {
			err = pingErr
			return
		}
		clientInstance = client
	})
	if err != nil {
		return err
	}
	if clientInstance == nil {
		return errors.New("mongodb client not initialized")
	}

	dbOnce.Do(func() {
		dbInstance = clientInstance.Database(dbName)
	})
	return nil
}

// GetDB returns the shared database handle. Panics if InitMongoDB was not
// called first; that is a wiring bug, not a runtime condition.
func GetDB() *mongo.Database {
	if dbInstance == nil {
		panic("mongodb: GetDB called before InitMongoDB")
	}
	return dbInstance
}

// Disconnect tears the shared client down on shutdown.
func Disconnect(ctx context.Context) error {
	if clientInstance == nil {
		return nil
	}
	return clientInstance.Disconnect(ctx)
}
