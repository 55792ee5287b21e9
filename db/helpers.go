package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// NewCollection returns a collection with majority write concern.
// Change streams and transactions both require majority acknowledged writes.
func NewCollection(name string, mongoInstance *mongo.Database) *mongo.Collection {
	return mongoInstance.Collection(name,
		options.Collection().SetWriteConcern(writeconcern.New(writeconcern.WMajority())),
	)
}

// Truncate removes all documents from a collection, or drops it entirely.
// Returns a short description for test logging.
func Truncate(col *mongo.Collection, drop bool) string {
	ctx := context.Background()
	if drop {
		if err := col.Drop(ctx); err != nil {
			return fmt.Sprintf("failed to drop %s: %v", col.Name(), err)
		}
		return fmt.Sprintf("dropped %s", col.Name())
	}

	res, err := col.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Sprintf("failed to truncate %s: %v", col.Name(), err)
	}
	return fmt.Sprintf("deleted %d documents from %s", res.DeletedCount, col.Name())
}
