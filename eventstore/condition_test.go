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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/slinkydeveloper/occurrent"
)

func Test_VersionFilter(t *testing.T) {
	tests := []struct {
		name      string
		condition occurrent.Condition
		want      bson.M
	}{
		{
			name:      "eq",
			condition: occurrent.Eq(1),
			want:      bson.M{"version": bson.M{"$eq": int64(1)}},
		},
		{
			name:      "ne",
			condition: occurrent.Ne(40),
			want:      bson.M{"version": bson.M{"$ne": int64(40)}},
		},
		{
			name:      "comparisons",
			condition: occurrent.Lte(9),
			want:      bson.M{"version": bson.M{"$lte": int64(9)}},
		},
		{
			name:      "and",
			condition: occurrent.And(occurrent.Gte(0), occurrent.Lt(100)),
			want: bson.M{"$and": bson.A{
				bson.M{"version": bson.M{"$gte": int64(0)}},
				bson.M{"version": bson.M{"$lt": int64(100)}},
			}},
		},
		{
			name:      "or",
			condition: occurrent.Or(occurrent.Eq(0), occurrent.Eq(1)),
			want: bson.M{"$or": bson.A{
				bson.M{"version": bson.M{"$eq": int64(0)}},
				bson.M{"version": bson.M{"$eq": int64(1)}},
			}},
		},
		{
			name:      "not over nested and",
			condition: occurrent.Not(occurrent.And(occurrent.Gte(0), occurrent.Lt(100))),
			want: bson.M{"$nor": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"version": bson.M{"$gte": int64(0)}},
					bson.M{"version": bson.M{"$lt": int64(100)}},
				}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionFilter(tt.condition, "version"))
		})
	}
}
