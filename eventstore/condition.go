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
	"go.mongodb.org/mongo-driver/bson"

	"github.com/slinkydeveloper/occurrent"
)

// VersionFilter lowers a version condition into a mongo filter over the given
// field. The transactional guarantee uses it to make the version advance a
// compare-and-set.
func VersionFilter(c occurrent.Condition, field string) bson.M {
	switch c.Operator() {
	case occurrent.OpEq:
		return bson.M{field: bson.M{"$eq": c.Value()}}
	case occurrent.OpNe:
		return bson.M{field: bson.M{"$ne": c.Value()}}
	case occurrent.OpLt:
		return bson.M{field: bson.M{"$lt": c.Value()}}
	case occurrent.OpGt:
		return bson.M{field: bson.M{"$gt": c.Value()}}
	case occurrent.OpLte:
		return bson.M{field: bson.M{"$lte": c.Value()}}
	case occurrent.OpGte:
		return bson.M{field: bson.M{"$gte": c.Value()}}
	case occurrent.OpAnd:
		return bson.M{"$and": childFilters(c.Children(), field)}
	case occurrent.OpOr:
		return bson.M{"$or": childFilters(c.Children(), field)}
	case occurrent.OpNot:
		// $nor with a single clause negates arbitrary nested filters,
		// which $not does not.
		return bson.M{"$nor": childFilters(c.Children(), field)}
	}
	return bson.M{}
}

func childFilters(children []occurrent.Condition, field string) bson.A {
	filters := make(bson.A, 0, len(children))
	for _, child := range children {
		filters = append(filters, VersionFilter(child, field))
	}
	return filters
}
