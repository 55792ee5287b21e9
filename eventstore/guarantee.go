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
	"github.com/slinkydeveloper/occurrent/db/tx"
)

type guaranteeKind int

const (
	guaranteeNone guaranteeKind = iota
	guaranteeTransactional
	guaranteeTransactionalAnnotation
)

// Guarantee selects how the store tracks stream versions and whether writes
// run inside a transaction. Modeled as a value dispatched at write time.
type Guarantee struct {
	kind              guaranteeKind
	versionCollection string
	executor          tx.Executor
}

// None disables stream version bookkeeping. Write conditions other than any
// are rejected and reads always report version 0.
func None() Guarantee {
	return Guarantee{kind: guaranteeNone}
}

// Transactional tracks stream versions in the named collection and runs each
// write batch inside a store-controlled transaction.
func Transactional(versionCollection string, executor tx.Executor) Guarantee {
	return Guarantee{
		kind:              guaranteeTransactional,
		versionCollection: versionCollection,
		executor:          executor,
	}
}

// TransactionalAnnotation tracks stream versions in the named collection but
// leaves the transaction boundary to the caller. Without an ambient
// transaction a failed batch insert leaves the version advanced while only
// the events before the failing one are written; that is the accepted
// failure mode of this variant.
func TransactionalAnnotation(versionCollection string) Guarantee {
	return Guarantee{
		kind:              guaranteeTransactionalAnnotation,
		versionCollection: versionCollection,
	}
}

// TracksVersions reports whether stream versions are recorded at all.
func (g Guarantee) TracksVersions() bool { return g.kind != guaranteeNone }

// VersionCollection returns the version collection name, if versions are tracked.
func (g Guarantee) VersionCollection() string { return g.versionCollection }
