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
	"github.com/cloudevents/sdk-go/v2/event"
	"go.mongodb.org/mongo-driver/bson"
)

// SubscriptionPosition is an opaque resume token issued by the change feed.
// It is stored and replayed byte for byte, never interpreted.
type SubscriptionPosition struct {
	token bson.Raw
}

// NewSubscriptionPosition wraps a resume token received from the change feed.
func NewSubscriptionPosition(token bson.Raw) SubscriptionPosition {
	return SubscriptionPosition{token: token}
}

// Token returns the raw resume token.
func (p SubscriptionPosition) Token() bson.Raw { return p.token }

// IsZero reports whether the position holds no token.
func (p SubscriptionPosition) IsZero() bool { return len(p.token) == 0 }

// StartAt selects where a subscription begins reading the change feed.
// The zero value starts at the current tail.
type StartAt struct {
	position *SubscriptionPosition
}

// StartAtNow starts a subscription at the current tail of the change feed.
func StartAtNow() StartAt { return StartAt{} }

// StartAtPosition resumes a subscription from a previously issued position.
func StartAtPosition(p SubscriptionPosition) StartAt { return StartAt{position: &p} }

// Position returns the resume position, if one was set.
func (s StartAt) Position() (SubscriptionPosition, bool) {
	if s.position == nil {
		return SubscriptionPosition{}, false
	}
	return *s.position, true
}

// ChangeEvent pairs a CloudEvent delivered by the change feed with the
// position it was read at. Consumers persist the position to resume later.
type ChangeEvent struct {
	Event    event.Event
	Position SubscriptionPosition
}
