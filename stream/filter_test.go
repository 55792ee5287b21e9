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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/slinkydeveloper/occurrent"
	"github.com/slinkydeveloper/occurrent/eventstore"
)

func Test_MatchExpression_Attribute(t *testing.T) {
	expr, err := matchExpression(occurrent.FilterType(occurrent.OpEq, "NameDefined"), eventstore.RFC3339String)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"fullDocument.type": bson.M{"$eq": "NameDefined"}}, expr)
}

func Test_MatchExpression_Connectives(t *testing.T) {
	f := occurrent.FilterAnd(
		occurrent.FilterSource(occurrent.OpEq, "urn:test"),
		occurrent.FilterOr(
			occurrent.FilterSubject(occurrent.OpEq, "john"),
			occurrent.FilterSubject(occurrent.OpEq, "jane"),
		),
	)
	expr, err := matchExpression(f, eventstore.RFC3339String)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"fullDocument.source": bson.M{"$eq": "urn:test"}},
		bson.M{"$or": bson.A{
			bson.M{"fullDocument.subject": bson.M{"$eq": "john"}},
			bson.M{"fullDocument.subject": bson.M{"$eq": "jane"}},
		}},
	}}, expr)
}

func Test_MatchExpression_TimeFollowsRepresentation(t *testing.T) {
	t0 := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

	expr, err := matchExpression(occurrent.FilterTime(occurrent.OpGte, t0), eventstore.Date)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"fullDocument.time": bson.M{"$gte": primitive.NewDateTimeFromTime(t0)}}, expr)

	expr, err = matchExpression(occurrent.FilterTime(occurrent.OpGte, t0), eventstore.RFC3339String)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"fullDocument.time": bson.M{"$gte": "2023-06-01T10:00:00Z"}}, expr)
}

func Test_MatchExpression_Raw(t *testing.T) {
	expr, err := matchExpression(occurrent.RawFilter(`{"fullDocument.type": "NameDefined"}`), eventstore.RFC3339String)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"fullDocument.type": "NameDefined"}, expr)

	_, err = matchExpression(occurrent.RawFilter(`not json`), eventstore.RFC3339String)
	assert.Error(t, err)
}
