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
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/slinkydeveloper/occurrent"
	"github.com/slinkydeveloper/occurrent/eventstore"
)

// matchExpression lowers a subscription filter into a $match expression over
// the inserted document. Raw filters are parsed from extended JSON and used
// verbatim.
func matchExpression(f occurrent.Filter, timeRep eventstore.TimeRepresentation) (bson.M, error) {
	switch f.Kind() {
	case occurrent.FilterKindRaw:
		var expr bson.M
		if err := bson.UnmarshalExtJSON([]byte(f.Raw()), false, &expr); err != nil {
			return nil, fmt.Errorf("failed to parse raw filter: %w", err)
		}
		return expr, nil

	case occurrent.FilterKindAnd:
		exprs, err := childExpressions(f.Children(), timeRep)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": exprs}, nil

	case occurrent.FilterKindOr:
		exprs, err := childExpressions(f.Children(), timeRep)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": exprs}, nil

	case occurrent.FilterKindAttribute:
		op, err := comparisonOperator(f.Operator())
		if err != nil {
			return nil, err
		}
		field := "fullDocument." + f.Attribute()
		return bson.M{field: bson.M{op: attributeValue(f, timeRep)}}, nil
	}

	return nil, fmt.Errorf("unsupported filter kind %d", f.Kind())
}

func childExpressions(children []occurrent.Filter, timeRep eventstore.TimeRepresentation) (bson.A, error) {
	exprs := make(bson.A, 0, len(children))
	for _, child := range children {
		expr, err := matchExpression(child, timeRep)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func comparisonOperator(op occurrent.Op) (string, error) {
	switch op {
	case occurrent.OpEq:
		return "$eq", nil
	case occurrent.OpNe:
		return "$ne", nil
	case occurrent.OpLt:
		return "$lt", nil
	case occurrent.OpGt:
		return "$gt", nil
	case occurrent.OpLte:
		return "$lte", nil
	case occurrent.OpGte:
		return "$gte", nil
	}
	return "", fmt.Errorf("operator %d is not a comparison", op)
}

// attributeValue converts filter operands to their stored representation.
// Time values follow the store's time representation.
func attributeValue(f occurrent.Filter, timeRep eventstore.TimeRepresentation) interface{} {
	t, ok := f.Value().(time.Time)
	if !ok {
		return f.Value()
	}
	if f.Attribute() == occurrent.AttributeTime && timeRep == eventstore.Date {
		return primitive.NewDateTimeFromTime(t)
	}
	return t.UTC().Format(time.RFC3339Nano)
}
