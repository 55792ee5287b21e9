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

package tx

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Executor database transaction executor
type Executor interface {
	WithTransaction(ctx context.Context, callback Callback) error
}

// Callback describes callback accepted by session.WithTransaction
type Callback func(sessCtx mongo.SessionContext) (interface{}, error)

// MongoExecutor manages mongo transaction
type MongoExecutor struct {
	Client *mongo.Client
}

// NewMongoExecutor creates new MongoExecutor for transaction management
func NewMongoExecutor(client *mongo.Client) *MongoExecutor {
	return &MongoExecutor{Client: client}
}

var _ Executor = (*MongoExecutor)(nil)

// WithTransaction executes callback within a transaction. Reads inside the
// transaction observe a point-in-time snapshot.
func (e *MongoExecutor) WithTransaction(ctx context.Context, callback Callback) error {
	session, err := e.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.New(writeconcern.WMajority()))

	result, err := session.WithTransaction(ctx, callback, txnOpts)
	if err != nil {
		return fmt.Errorf("failed to execute transaction: %w", err)
	}

	log.Tracef("tx successful with result: %v", result)
	return nil
}

// InTransaction reports whether the context carries an ambient mongo session.
// It does not check whether a transaction is active on that session.
func InTransaction(ctx context.Context) bool {
	session := mongo.SessionFromContext(ctx)
	return session != nil
}
