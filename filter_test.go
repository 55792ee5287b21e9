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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Attributes(t *testing.T) {
	f := FilterType(OpEq, "NameDefined")
	assert.Equal(t, FilterKindAttribute, f.Kind())
	assert.Equal(t, AttributeType, f.Attribute())
	assert.Equal(t, OpEq, f.Operator())
	assert.Equal(t, "NameDefined", f.Value())

	ts := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, AttributeTime, FilterTime(OpGte, ts).Attribute())
	assert.Equal(t, AttributeID, FilterID(OpNe, "e1").Attribute())
	assert.Equal(t, AttributeSource, FilterSource(OpEq, "urn:test").Attribute())
	assert.Equal(t, AttributeSubject, FilterSubject(OpEq, "john").Attribute())
}

func TestFilter_Connectives(t *testing.T) {
	f := FilterAnd(FilterType(OpEq, "NameDefined"), FilterSubject(OpNe, "jane"), FilterID(OpEq, "e1"))
	assert.Equal(t, FilterKindAnd, f.Kind())
	assert.Len(t, f.Children(), 3)

	g := FilterOr(FilterSource(OpEq, "a"), FilterSource(OpEq, "b"))
	assert.Equal(t, FilterKindOr, g.Kind())
	assert.Len(t, g.Children(), 2)
}

func TestFilter_Raw(t *testing.T) {
	f := RawFilter(`{"fullDocument.type": "NameDefined"}`)
	assert.Equal(t, FilterKindRaw, f.Kind())
	assert.Equal(t, `{"fullDocument.type": "NameDefined"}`, f.Raw())
}
