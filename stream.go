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

// EventIterator yields the events of a stream lazily, in insertion order.
// The sequence is single pass; Close releases the underlying cursor and is
// safe to call more than once.
type EventIterator interface {
	Next(ctx context.Context) bool
	Event() *event.Event
	Err() error
	Close(ctx context.Context) error
}

// EventStream is the result of reading a stream: its id, the current version
// (count of committed append batches, 0 without a consistency guarantee) and
// a lazy event sequence.
type EventStream struct {
	ID      string
	Version int64
	Events  EventIterator
}

// All drains the event sequence into a slice and closes it.
func (s *EventStream) All(ctx context.Context) ([]event.Event, error) {
	defer s.Events.Close(ctx)

	var events []event.Event
	for s.Events.Next(ctx) {
		events = append(events, *s.Events.Event())
	}
	return events, s.Events.Err()
}
