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

	"github.com/stretchr/testify/assert"
)

func TestCondition_Eval(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		version   int64
		want      bool
	}{
		{name: "eq matches", condition: Eq(3), version: 3, want: true},
		{name: "eq rejects", condition: Eq(3), version: 4, want: false},
		{name: "ne matches", condition: Ne(3), version: 4, want: true},
		{name: "ne rejects", condition: Ne(3), version: 3, want: false},
		{name: "lt matches", condition: Lt(3), version: 2, want: true},
		{name: "lt rejects equal", condition: Lt(3), version: 3, want: false},
		{name: "gt matches", condition: Gt(3), version: 4, want: true},
		{name: "gt rejects equal", condition: Gt(3), version: 3, want: false},
		{name: "lte matches equal", condition: Lte(3), version: 3, want: true},
		{name: "gte matches equal", condition: Gte(3), version: 3, want: true},
		{name: "and matches", condition: And(Gte(0), Lt(100), Ne(40)), version: 1, want: true},
		{name: "and rejects one child", condition: And(Gte(0), Lt(100), Ne(1)), version: 1, want: false},
		{name: "or matches one child", condition: Or(Eq(0), Eq(7)), version: 7, want: true},
		{name: "or rejects all children", condition: Or(Eq(0), Eq(7)), version: 3, want: false},
		{name: "not inverts", condition: Not(Eq(3)), version: 3, want: false},
		{name: "nested", condition: And(Not(Eq(40)), Or(Lt(10), Gt(90))), version: 5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.condition.Eval(tt.version))
		})
	}
}

func TestCondition_Describe(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		want      string
	}{
		{name: "eq", condition: Eq(1), want: "to be equal to 1"},
		{name: "ne", condition: Ne(40), want: "to not be equal to 40"},
		{name: "lt", condition: Lt(100), want: "to be less than 100"},
		{name: "gt", condition: Gt(0), want: "to be greater than 0"},
		{name: "lte", condition: Lte(9), want: "to be less than or equal to 9"},
		{name: "gte", condition: Gte(0), want: "to be greater than or equal to 0"},
		{
			name:      "and",
			condition: And(Gte(0), Lt(100), Ne(40)),
			want:      "to be greater than or equal to 0 and to be less than 100 and to not be equal to 40",
		},
		{
			name:      "or",
			condition: Or(Eq(0), Eq(1)),
			want:      "to be equal to 0 or to be equal to 1",
		},
		{name: "not", condition: Not(Eq(1)), want: "not to be equal to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.condition.Describe())
		})
	}
}

func TestWriteConditionNotFulfilled_Message(t *testing.T) {
	err := &WriteConditionNotFulfilledError{
		StreamID: "name",
		Expected: Eq(10).Describe(),
		Actual:   3,
	}
	assert.Equal(t, "WriteCondition was not fulfilled. Expected version to be equal to 10 but was 3.", err.Error())

	composite := &WriteConditionNotFulfilledError{
		StreamID: "name",
		Expected: And(Gte(0), Lt(100), Ne(1)).Describe(),
		Actual:   1,
	}
	assert.Equal(t,
		"WriteCondition was not fulfilled. Expected version to be greater than or equal to 0 and to be less than 100 and to not be equal to 1 but was 1.",
		composite.Error(),
	)
}

func TestWriteCondition(t *testing.T) {
	assert.True(t, AnyStreamVersion().IsAny())
	_, ok := AnyStreamVersion().Condition()
	assert.False(t, ok)

	wc := StreamVersionEq(2)
	assert.False(t, wc.IsAny())
	c, ok := wc.Condition()
	assert.True(t, ok)
	assert.True(t, c.Eval(2))
	assert.False(t, c.Eval(3))
	assert.Equal(t, "stream version to be equal to 2", wc.String())
}
