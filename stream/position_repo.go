/*
 * Copyright (c) 2023. Monimoto Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package stream

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/slinkydeveloper/occurrent"
)

// PositionRepository stores subscription resume positions in a mongo
// collection, one document per subscription id. Tokens are stored and
// replayed byte for byte.
type PositionRepository struct {
	col *mongo.Collection
}

var _ occurrent.PositionStorage = (*PositionRepository)(nil)

// NewPositionRepository builds a position repository on the given collection.
func NewPositionRepository(col *mongo.Collection) *PositionRepository {
	return &PositionRepository{col: col}
}

type positionDocument struct {
	ID       string   `bson:"_id"`
	Position bson.Raw `bson:"position"`
}

// Read returns the stored position for a subscription id.
func (r *PositionRepository) Read(ctx context.Context, subscriptionID string) (occurrent.SubscriptionPosition, error) {
	var doc positionDocument
	err := r.col.FindOne(ctx, bson.M{"_id": subscriptionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return occurrent.SubscriptionPosition{}, fmt.Errorf("subscription %q: %w", subscriptionID, occurrent.ErrPositionNotFound)
	}
	if err != nil {
		return occurrent.SubscriptionPosition{}, fmt.Errorf("failed to read position for subscription %q: %w", subscriptionID, err)
	}
	return occurrent.NewSubscriptionPosition(doc.Position), nil
}

// Save stores the position, overwriting any previous value.
func (r *PositionRepository) Save(ctx context.Context, subscriptionID string, position occurrent.SubscriptionPosition) error {
	update := bson.M{"$set": bson.M{"position": position.Token()}}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": subscriptionID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save position for subscription %q: %w", subscriptionID, err)
	}
	return nil
}

// Delete removes the stored position for a subscription id.
func (r *PositionRepository) Delete(ctx context.Context, subscriptionID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": subscriptionID})
	if err != nil {
		return fmt.Errorf("failed to delete position for subscription %q: %w", subscriptionID, err)
	}
	return nil
}
