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

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/slinkydeveloper/occurrent"
	"github.com/slinkydeveloper/occurrent/db"
	"github.com/slinkydeveloper/occurrent/db/tx"
)

// DefaultEventCollection is used when Config.EventCollection is empty.
const DefaultEventCollection = "events"

// Config configures an EventStore.
type Config struct {
	// EventCollection is the collection events are stored in.
	EventCollection string
	// TimeRepresentation selects how the time attribute is persisted.
	TimeRepresentation TimeRepresentation
	// Format is the event codec. Defaults to the structured JSON format.
	Format occurrent.EventFormat
	// Guarantee selects the stream consistency strategy. Defaults to None.
	Guarantee Guarantee
}

// EventStore persists CloudEvents in a mongo collection, one document per
// event, addressed by a streamid field.
type EventStore struct {
	database  *mongo.Database
	events    *mongo.Collection
	versions  *mongo.Collection
	format    occurrent.EventFormat
	timeRep   TimeRepresentation
	guarantee Guarantee
}

var _ occurrent.EventStore = (*EventStore)(nil)

// New builds an event store and bootstraps the unique indexes it relies on:
// (streamid, id) on the event collection and (streamid) on the version
// collection when versions are tracked.
func New(ctx context.Context, database *mongo.Database, cfg Config) (*EventStore, error) {
	if cfg.EventCollection == "" {
		cfg.EventCollection = DefaultEventCollection
	}
	if cfg.Format == nil {
		cfg.Format = occurrent.JSONFormat
	}

	if err := database.Client().Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", occurrent.ErrStoreUnavailable, err)
	}

	s := &EventStore{
		database:  database,
		events:    db.NewCollection(cfg.EventCollection, database),
		format:    cfg.Format,
		timeRep:   cfg.TimeRepresentation,
		guarantee: cfg.Guarantee,
	}

	_, err := s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldStreamID, Value: 1}, {Key: fieldEventID, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event id index: %w", err)
	}

	if cfg.Guarantee.TracksVersions() {
		s.versions = db.NewCollection(cfg.Guarantee.VersionCollection(), database)
		_, err := s.versions.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: fieldStreamID, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream version index: %w", err)
		}
	}

	log.Infof("event store ready on collection %s", cfg.EventCollection)

	return s, nil
}

// EventCollection returns the collection events are written to. The change
// feed watches it.
func (s *EventStore) EventCollection() *mongo.Collection { return s.events }

// Format returns the configured event codec.
func (s *EventStore) Format() occurrent.EventFormat { return s.format }

// TimeRepresentation returns the configured time representation.
func (s *EventStore) TimeRepresentation() TimeRepresentation { return s.timeRep }

// Write appends a batch of events with no version guarantee.
func (s *EventStore) Write(ctx context.Context, streamID string, events []event.Event) error {
	return s.WriteWithCondition(ctx, streamID, occurrent.AnyStreamVersion(), events)
}

// WriteWithCondition appends a batch of events gated on the current stream
// version. The batch is fully encoded before anything is written. An empty
// batch is a no-op and does not advance the version.
func (s *EventStore) WriteWithCondition(ctx context.Context, streamID string, condition occurrent.WriteCondition, events []event.Event) error {
	docs, err := s.encodeBatch(streamID, events)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	switch s.guarantee.kind {
	case guaranteeNone:
		if !condition.IsAny() {
			return fmt.Errorf("stream %q: %w", streamID, occurrent.ErrWriteConditionNotSupported)
		}
		return s.insertBatch(ctx, streamID, docs)

	case guaranteeTransactional:
		err := s.guarantee.executor.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, s.writeVersioned(sessCtx, streamID, condition, docs, true)
		})
		return unwrapWriteError(err)

	case guaranteeTransactionalAnnotation:
		if !tx.InTransaction(ctx) {
			log.Tracef("no ambient transaction for stream %s, version advance and insert are not atomic", streamID)
		}
		return s.writeVersioned(ctx, streamID, condition, docs, false)
	}

	return nil
}

// writeVersioned runs the versioned write pipeline: look up the current
// version, evaluate the condition, insert the batch and advance the version.
// The transactional variant inserts before advancing; the ambient variant
// advances first, which is where its documented anomaly comes from.
func (s *EventStore) writeVersioned(ctx context.Context, streamID string, condition occurrent.WriteCondition, docs []interface{}, transactional bool) error {
	version, err := s.lookupVersion(ctx, streamID)
	if err != nil {
		return err
	}

	if c, ok := condition.Condition(); ok && !c.Eval(version) {
		return &occurrent.WriteConditionNotFulfilledError{
			StreamID: streamID,
			Expected: c.Describe(),
			Actual:   version,
		}
	}

	if transactional {
		if err := s.insertBatch(ctx, streamID, docs); err != nil {
			return err
		}
		return s.advanceVersion(ctx, streamID, condition, version)
	}

	if err := s.advanceVersion(ctx, streamID, condition, version); err != nil {
		return err
	}
	return s.insertBatch(ctx, streamID, docs)
}

// advanceVersion bumps the stream version by one. For existing streams the
// update filter embeds the lowered write condition so the advance is a
// compare-and-set against concurrent writers.
func (s *EventStore) advanceVersion(ctx context.Context, streamID string, condition occurrent.WriteCondition, current int64) error {
	if current == 0 {
		_, err := s.versions.InsertOne(ctx, bson.M{fieldStreamID: streamID, "version": int64(1)})
		if err != nil {
			return fmt.Errorf("failed to create version for stream %q: %w", streamID, err)
		}
		return nil
	}

	filter := bson.M{fieldStreamID: streamID}
	if c, ok := condition.Condition(); ok {
		filter = bson.M{"$and": bson.A{filter, VersionFilter(c, "version")}}
	}

	res, err := s.versions.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"version": 1}})
	if err != nil {
		return fmt.Errorf("failed to advance version for stream %q: %w", streamID, err)
	}
	if res.ModifiedCount == 0 {
		actual, lookupErr := s.lookupVersion(ctx, streamID)
		if lookupErr != nil {
			return lookupErr
		}
		if c, ok := condition.Condition(); ok {
			return &occurrent.WriteConditionNotFulfilledError{
				StreamID: streamID,
				Expected: c.Describe(),
				Actual:   actual,
			}
		}
		return fmt.Errorf("failed to advance version for stream %q: no version document matched", streamID)
	}
	return nil
}

func (s *EventStore) insertBatch(ctx context.Context, streamID string, docs []interface{}) error {
	_, err := s.events.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &occurrent.DuplicateEventIDError{StreamID: streamID, Err: err}
		}
		return fmt.Errorf("failed to insert events into stream %q: %w", streamID, err)
	}
	log.Tracef("inserted %d events into stream %s", len(docs), streamID)
	return nil
}

// encodeBatch consumes the whole input before any document is written. Each
// document gets a monotonic sequence number preserving insertion order.
func (s *EventStore) encodeBatch(streamID string, events []event.Event) ([]interface{}, error) {
	base := time.Now().UnixNano()
	docs := make([]interface{}, 0, len(events))
	for i, e := range events {
		doc, err := EventToDocument(s.format, s.timeRep, streamID, e)
		if err != nil {
			return nil, err
		}
		doc[fieldSeq] = base + int64(i)
		docs = append(docs, doc)
	}
	return docs, nil
}

// Read returns the whole stream in insertion order.
func (s *EventStore) Read(ctx context.Context, streamID string) (*occurrent.EventStream, error) {
	return s.ReadRange(ctx, streamID, 0, 0)
}

// ReadRange returns a slice of the stream. Skip and limit apply to the
// server side ordered result; a limit of 0 means no limit. A stream with no
// events yields version 0 and an empty sequence.
func (s *EventStore) ReadRange(ctx context.Context, streamID string, skip, limit int64) (*occurrent.EventStream, error) {
	version, err := s.lookupVersion(ctx, streamID)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find().SetSort(bson.D{{Key: fieldSeq, Value: 1}, {Key: fieldID, Value: 1}})
	if skip > 0 {
		findOpts.SetSkip(skip)
	}
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cursor, err := s.events.Find(ctx, bson.M{fieldStreamID: streamID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %q: %w", streamID, err)
	}

	return &occurrent.EventStream{
		ID:      streamID,
		Version: version,
		Events:  &cursorIterator{cursor: cursor, format: s.format, timeRep: s.timeRep},
	}, nil
}

// Exists reports whether the stream has at least one event.
func (s *EventStore) Exists(ctx context.Context, streamID string) (bool, error) {
	count, err := s.events.CountDocuments(ctx, bson.M{fieldStreamID: streamID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check stream %q: %w", streamID, err)
	}
	return count > 0, nil
}

// StreamVersion returns the committed batch count of the stream, 0 when no
// versions are tracked.
func (s *EventStore) StreamVersion(ctx context.Context, streamID string) (int64, error) {
	return s.lookupVersion(ctx, streamID)
}

func (s *EventStore) lookupVersion(ctx context.Context, streamID string) (int64, error) {
	if !s.guarantee.TracksVersions() {
		return 0, nil
	}

	var doc struct {
		Version int64 `bson:"version"`
	}
	err := s.versions.FindOne(ctx, bson.M{fieldStreamID: streamID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up version for stream %q: %w", streamID, err)
	}
	return doc.Version, nil
}

// unwrapWriteError lifts typed write errors out of the transaction wrapper so
// callers can match on them directly.
func unwrapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var notFulfilled *occurrent.WriteConditionNotFulfilledError
	if errors.As(err, &notFulfilled) {
		return notFulfilled
	}
	var duplicate *occurrent.DuplicateEventIDError
	if errors.As(err, &duplicate) {
		return duplicate
	}
	return err
}

// cursorIterator adapts a mongo cursor into a lazy event sequence. The cursor
// is closed when the sequence ends or on the first decode failure.
type cursorIterator struct {
	cursor  *mongo.Cursor
	format  occurrent.EventFormat
	timeRep TimeRepresentation
	current *event.Event
	err     error
	closed  bool
}

var _ occurrent.EventIterator = (*cursorIterator)(nil)

func (it *cursorIterator) Next(ctx context.Context) bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.cursor.Next(ctx) {
		it.err = it.cursor.Err()
		_ = it.Close(ctx)
		return false
	}

	var doc bson.M
	if err := it.cursor.Decode(&doc); err != nil {
		it.err = &occurrent.MalformedDocumentError{Err: err}
		_ = it.Close(ctx)
		return false
	}

	e, err := DocumentToEvent(it.format, it.timeRep, doc)
	if err != nil {
		it.err = err
		_ = it.Close(ctx)
		return false
	}
	it.current = e
	return true
}

func (it *cursorIterator) Event() *event.Event { return it.current }

func (it *cursorIterator) Err() error { return it.err }

func (it *cursorIterator) Close(ctx context.Context) error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.cursor.Close(ctx)
}
