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

import "time"

// FilterKind identifies the shape of a filter node.
type FilterKind int

const (
	// FilterKindAttribute compares one CloudEvent attribute against a value.
	FilterKindAttribute FilterKind = iota
	// FilterKindAnd matches when every child filter matches.
	FilterKindAnd
	// FilterKindOr matches when at least one child filter matches.
	FilterKindOr
	// FilterKindRaw carries a vendor native filter expression verbatim.
	FilterKindRaw
)

// CloudEvent attribute names accepted by the structured filter form.
const (
	AttributeID      = "id"
	AttributeType    = "type"
	AttributeSource  = "source"
	AttributeSubject = "subject"
	AttributeTime    = "time"
)

// Filter restricts which events a subscription receives. Filters are built
// from attribute comparisons composed with FilterAnd/FilterOr, or from a raw
// vendor native expression.
type Filter struct {
	kind      FilterKind
	attribute string
	op        Op
	value     interface{}
	children  []Filter
	raw       string
}

// FilterAttribute compares an arbitrary attribute, including extensions.
func FilterAttribute(name string, op Op, value interface{}) Filter {
	return Filter{kind: FilterKindAttribute, attribute: name, op: op, value: value}
}

// FilterID filters on the CloudEvent id attribute.
func FilterID(op Op, value string) Filter { return FilterAttribute(AttributeID, op, value) }

// FilterType filters on the CloudEvent type attribute.
func FilterType(op Op, value string) Filter { return FilterAttribute(AttributeType, op, value) }

// FilterSource filters on the CloudEvent source attribute.
func FilterSource(op Op, value string) Filter { return FilterAttribute(AttributeSource, op, value) }

// FilterSubject filters on the CloudEvent subject attribute.
func FilterSubject(op Op, value string) Filter { return FilterAttribute(AttributeSubject, op, value) }

// FilterTime filters on the CloudEvent time attribute.
func FilterTime(op Op, value time.Time) Filter { return FilterAttribute(AttributeTime, op, value) }

// FilterAnd matches when every child filter matches.
func FilterAnd(first, second Filter, rest ...Filter) Filter {
	return Filter{kind: FilterKindAnd, children: append([]Filter{first, second}, rest...)}
}

// FilterOr matches when at least one child filter matches.
func FilterOr(first, second Filter, rest ...Filter) Filter {
	return Filter{kind: FilterKindOr, children: append([]Filter{first, second}, rest...)}
}

// RawFilter wraps a vendor native match expression. The string is kept as is
// and parsed as an extended JSON match document when the filter is lowered.
func RawFilter(expression string) Filter {
	return Filter{kind: FilterKindRaw, raw: expression}
}

// Kind returns the node shape.
func (f Filter) Kind() FilterKind { return f.kind }

// Attribute returns the attribute name of an attribute node.
func (f Filter) Attribute() string { return f.attribute }

// Operator returns the comparison operator of an attribute node.
func (f Filter) Operator() Op { return f.op }

// Value returns the comparison operand of an attribute node.
func (f Filter) Value() interface{} { return f.value }

// Children returns the child filters of a connective node.
func (f Filter) Children() []Filter { return f.children }

// Raw returns the vendor native expression of a raw node.
func (f Filter) Raw() string { return f.raw }
