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
	"fmt"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/slinkydeveloper/occurrent"
)

// TimeRepresentation selects how the CloudEvent time attribute is stored.
// One representation is used consistently per store instance.
type TimeRepresentation int

const (
	// RFC3339String stores time as the RFC 3339 string produced by the
	// event format.
	RFC3339String TimeRepresentation = iota
	// Date stores time as a native timestamp with millisecond precision.
	// Event times must be UTC and millisecond truncated.
	Date
)

// Document field names used by the store. The internal ones (_id, seq and
// streamid) are stripped again when a document is decoded back into a
// CloudEvent; id and time are CloudEvent attributes and are kept.
const (
	fieldID       = "_id"
	fieldStreamID = "streamid"
	fieldSeq      = "seq"
	fieldTime     = "time"
	fieldEventID  = "id"
)

// EventToDocument converts a CloudEvent into its stored document form: the
// event is serialized with the format, parsed into a document, and stamped
// with the stream id. With the Date representation the time field is replaced
// by a native timestamp after precision and zone checks.
func EventToDocument(format occurrent.EventFormat, rep TimeRepresentation, streamID string, e event.Event) (bson.M, error) {
	if rep == Date {
		if t := e.Time(); !t.IsZero() {
			if !t.Truncate(time.Millisecond).Equal(t) {
				return nil, fmt.Errorf("event %q: %w", e.ID(), occurrent.ErrInvalidTimePrecision)
			}
			if _, offset := t.Zone(); offset != 0 {
				return nil, fmt.Errorf("event %q: %w", e.ID(), occurrent.ErrInvalidTimeZone)
			}
		}
	}

	payload, err := format.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %q: %w", e.ID(), err)
	}

	var doc bson.M
	if err := bson.UnmarshalExtJSON(payload, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse event %q into a document: %w", e.ID(), err)
	}

	doc[fieldStreamID] = streamID

	if rep == Date {
		if t := e.Time(); !t.IsZero() {
			doc[fieldTime] = primitive.NewDateTimeFromTime(t)
		}
	}

	return doc, nil
}

// DocumentToEvent converts a stored document back into a CloudEvent. Internal
// fields are removed and, with the Date representation, the native timestamp
// is re-stringified to RFC 3339 UTC before the format deserializes it.
func DocumentToEvent(format occurrent.EventFormat, rep TimeRepresentation, doc bson.M) (*event.Event, error) {
	delete(doc, fieldID)
	delete(doc, fieldSeq)
	delete(doc, fieldStreamID)

	if rep == Date {
		if dt, ok := doc[fieldTime].(primitive.DateTime); ok {
			doc[fieldTime] = dt.Time().UTC().Format(time.RFC3339Nano)
		}
	}

	payload, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, &occurrent.MalformedDocumentError{Err: err}
	}

	var e event.Event
	if err := format.Unmarshal(payload, &e); err != nil {
		return nil, &occurrent.MalformedDocumentError{Err: err}
	}

	return &e, nil
}
