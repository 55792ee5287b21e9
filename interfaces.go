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

package occurrent

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"
)

// EventStore writes and reads ordered streams of CloudEvents addressed by a
// stream id.
type EventStore interface {
	// Write appends a batch of events to a stream with no version guarantee.
	Write(ctx context.Context, streamID string, events []event.Event) error
	// WriteWithCondition appends a batch gated on the current stream version.
	WriteWithCondition(ctx context.Context, streamID string, condition WriteCondition, events []event.Event) error
	// Read returns the whole stream in insertion order.
	Read(ctx context.Context, streamID string) (*EventStream, error)
	// ReadRange returns a slice of the stream. A limit of 0 means no limit.
	ReadRange(ctx context.Context, streamID string, skip, limit int64) (*EventStream, error)
	// Exists reports whether at least one event was written to the stream.
	Exists(ctx context.Context, streamID string) (bool, error)
	// StreamVersion returns the number of committed append batches.
	StreamVersion(ctx context.Context, streamID string) (int64, error)
}

// Action handles one event delivered to a subscription. Returning an error
// triggers redelivery of the same event.
type Action func(ctx context.Context, ce ChangeEvent) error

// Subscription is the handle returned when a subscription starts.
type Subscription interface {
	ID() string
	// Done is closed when the subscription worker has stopped.
	Done() <-chan struct{}
	// Err returns the terminal error, if the subscription failed permanently.
	Err() error
}

// Subscriptions delivers a position aware tail of the global event feed.
type Subscriptions interface {
	Subscribe(subscriptionID string, filter *Filter, startAt StartAt, action Action) (Subscription, error)
	Cancel(subscriptionID string) error
	Shutdown(ctx context.Context) error
}

// PositionStorage durably maps a subscription id to its resume position.
type PositionStorage interface {
	// Read returns the stored position or ErrPositionNotFound.
	Read(ctx context.Context, subscriptionID string) (SubscriptionPosition, error)
	// Save stores the position, overwriting any previous value.
	Save(ctx context.Context, subscriptionID string, position SubscriptionPosition) error
	// Delete removes the stored position.
	Delete(ctx context.Context, subscriptionID string) error
}
