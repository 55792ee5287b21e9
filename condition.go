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
	"fmt"
	"strings"
)

// Op identifies a node in a condition or filter tree.
type Op int

// Comparison and connective operators understood by conditions and filters.
const (
	OpEq Op = iota
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte
	OpAnd
	OpOr
	OpNot
)

// Condition is a predicate over an integer stream version. Leaves compare
// against a fixed value, connectives combine child conditions with arbitrary
// nesting.
type Condition struct {
	op       Op
	value    int64
	children []Condition
}

// Eq matches a version equal to v.
func Eq(v int64) Condition { return Condition{op: OpEq, value: v} }

// Ne matches a version not equal to v.
func Ne(v int64) Condition { return Condition{op: OpNe, value: v} }

// Lt matches a version less than v.
func Lt(v int64) Condition { return Condition{op: OpLt, value: v} }

// Gt matches a version greater than v.
func Gt(v int64) Condition { return Condition{op: OpGt, value: v} }

// Lte matches a version less than or equal to v.
func Lte(v int64) Condition { return Condition{op: OpLte, value: v} }

// Gte matches a version greater than or equal to v.
func Gte(v int64) Condition { return Condition{op: OpGte, value: v} }

// And matches when every child condition matches.
func And(first, second Condition, rest ...Condition) Condition {
	return Condition{op: OpAnd, children: append([]Condition{first, second}, rest...)}
}

// Or matches when at least one child condition matches.
func Or(first, second Condition, rest ...Condition) Condition {
	return Condition{op: OpOr, children: append([]Condition{first, second}, rest...)}
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return Condition{op: OpNot, children: []Condition{c}}
}

// Operator returns the node operator.
func (c Condition) Operator() Op { return c.op }

// Value returns the comparison operand of a leaf node.
func (c Condition) Value() int64 { return c.value }

// Children returns the child conditions of a connective node.
func (c Condition) Children() []Condition { return c.children }

// Eval evaluates the condition against a stream version.
func (c Condition) Eval(version int64) bool {
	switch c.op {
	case OpEq:
		return version == c.value
	case OpNe:
		return version != c.value
	case OpLt:
		return version < c.value
	case OpGt:
		return version > c.value
	case OpLte:
		return version <= c.value
	case OpGte:
		return version >= c.value
	case OpAnd:
		for _, child := range c.children {
			if !child.Eval(version) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range c.children {
			if child.Eval(version) {
				return true
			}
		}
		return false
	case OpNot:
		return !c.children[0].Eval(version)
	}
	return false
}

// Describe renders the condition as a human readable phrase, e.g.
// "to be greater than or equal to 0 and to be less than 100".
func (c Condition) Describe() string {
	switch c.op {
	case OpEq:
		return fmt.Sprintf("to be equal to %d", c.value)
	case OpNe:
		return fmt.Sprintf("to not be equal to %d", c.value)
	case OpLt:
		return fmt.Sprintf("to be less than %d", c.value)
	case OpGt:
		return fmt.Sprintf("to be greater than %d", c.value)
	case OpLte:
		return fmt.Sprintf("to be less than or equal to %d", c.value)
	case OpGte:
		return fmt.Sprintf("to be greater than or equal to %d", c.value)
	case OpAnd:
		return joinDescriptions(c.children, " and ")
	case OpOr:
		return joinDescriptions(c.children, " or ")
	case OpNot:
		return "not " + c.children[0].Describe()
	}
	return ""
}

func joinDescriptions(children []Condition, sep string) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		parts = append(parts, child.Describe())
	}
	return strings.Join(parts, sep)
}

// WriteCondition gates a write on the current stream version. The zero value
// means any version is accepted.
type WriteCondition struct {
	condition *Condition
}

// AnyStreamVersion accepts a write regardless of the current stream version.
func AnyStreamVersion() WriteCondition { return WriteCondition{} }

// StreamVersion gates a write on an arbitrary version condition.
func StreamVersion(c Condition) WriteCondition { return WriteCondition{condition: &c} }

// StreamVersionEq gates a write on the stream version being exactly v.
func StreamVersionEq(v int64) WriteCondition { return StreamVersion(Eq(v)) }

// IsAny reports whether the condition accepts every version.
func (wc WriteCondition) IsAny() bool { return wc.condition == nil }

// Condition returns the underlying version condition, if any.
func (wc WriteCondition) Condition() (Condition, bool) {
	if wc.condition == nil {
		return Condition{}, false
	}
	return *wc.condition, true
}

func (wc WriteCondition) String() string {
	if wc.condition == nil {
		return "any stream version"
	}
	return "stream version " + wc.condition.Describe()
}
