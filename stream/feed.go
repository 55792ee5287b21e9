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
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/slinkydeveloper/occurrent"
	"github.com/slinkydeveloper/occurrent/eventstore"
)

const operationTypeInsert = "insert"

// changeNotification is the slice of a change stream notification the feed
// cares about: the resume token, the operation and the inserted document.
type changeNotification struct {
	ID            bson.Raw `bson:"_id"`
	OperationType string   `bson:"operationType"`
	FullDocument  bson.M   `bson:"fullDocument"`
}

// ChangeFeed adapts the mongo change stream of the event collection into a
// stream of CloudEvents, each paired with the resume token it was read at.
type ChangeFeed struct {
	col     *mongo.Collection
	format  occurrent.EventFormat
	timeRep eventstore.TimeRepresentation
}

// NewChangeFeed builds a change feed over an event collection.
func NewChangeFeed(col *mongo.Collection, format occurrent.EventFormat, timeRep eventstore.TimeRepresentation) *ChangeFeed {
	return &ChangeFeed{col: col, format: format, timeRep: timeRep}
}

// NewChangeFeedForStore builds a change feed watching the store's event
// collection with the store's codec settings.
func NewChangeFeedForStore(store *eventstore.EventStore) *ChangeFeed {
	return NewChangeFeed(store.EventCollection(), store.Format(), store.TimeRepresentation())
}

// Watch opens the change feed and invokes fn for every inserted event, in
// feed order, until the context is cancelled or the cursor fails. An error
// from fn stops the feed and is returned as is.
func (f *ChangeFeed) Watch(ctx context.Context, filter *occurrent.Filter, resumeAfter occurrent.SubscriptionPosition, fn func(ctx context.Context, ce occurrent.ChangeEvent) error) error {
	pipeline, err := insertPipeline(filter, f.timeRep)
	if err != nil {
		return err
	}

	opts := options.ChangeStream()
	if !resumeAfter.IsZero() {
		opts.SetResumeAfter(resumeAfter.Token())
	}

	cursor, err := f.col.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to watch collection: %w", err)
	}
	defer cursor.Close(ctx)

	log.Tracef("change feed opened on %s", f.col.Name())

	for cursor.Next(ctx) {
		var note changeNotification
		if err := bson.Unmarshal(cursor.Current, &note); err != nil {
			return fmt.Errorf("failed to unmarshal change notification: %w", err)
		}
		if note.OperationType != operationTypeInsert {
			continue
		}

		e, err := eventstore.DocumentToEvent(f.format, f.timeRep, note.FullDocument)
		if err != nil {
			return err
		}

		ce := occurrent.ChangeEvent{
			Event:    *e,
			Position: occurrent.NewSubscriptionPosition(note.ID),
		}
		if err := fn(ctx, ce); err != nil {
			return err
		}
	}

	return cursor.Err()
}

// CurrentPosition returns the current tail of the change feed, used to
// initialize a subscription that starts now.
func (f *ChangeFeed) CurrentPosition(ctx context.Context) (occurrent.SubscriptionPosition, error) {
	cursor, err := f.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return occurrent.SubscriptionPosition{}, fmt.Errorf("failed to probe change feed position: %w", err)
	}
	defer cursor.Close(ctx)

	// TryNext forces a round trip so the post batch resume token is set.
	cursor.TryNext(ctx)
	if err := cursor.Err(); err != nil {
		return occurrent.SubscriptionPosition{}, fmt.Errorf("failed to probe change feed position: %w", err)
	}

	token := cursor.ResumeToken()
	if len(token) == 0 {
		return occurrent.SubscriptionPosition{}, fmt.Errorf("change feed returned no resume token")
	}
	return occurrent.NewSubscriptionPosition(token), nil
}

// insertPipeline builds the aggregation pipeline restricting the feed to
// insert notifications, optionally narrowed by a subscription filter.
func insertPipeline(filter *occurrent.Filter, timeRep eventstore.TimeRepresentation) (mongo.Pipeline, error) {
	match := bson.M{"operationType": operationTypeInsert}
	if filter != nil {
		expr, err := matchExpression(*filter, timeRep)
		if err != nil {
			return nil, err
		}
		match = bson.M{"$and": bson.A{match, expr}}
	}
	return mongo.Pipeline{bson.D{{Key: "$match", Value: match}}}, nil
}
