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
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/slinkydeveloper/occurrent"
)

// Durable wraps the engine with automatic position persistence: after each
// successfully handled event (or every n-th one, see PersistEveryN) the
// position is saved, so a restarted subscription resumes where it left off.
type Durable struct {
	engine  *Engine
	storage occurrent.PositionStorage
	every   int
}

// DurableOption customizes a Durable.
type DurableOption func(*Durable)

// PersistEveryN persists the position only every n-th delivered event.
// Events delivered since the last persisted position are redelivered after a
// restart.
func PersistEveryN(n int) DurableOption {
	return func(d *Durable) {
		if n > 0 {
			d.every = n
		}
	}
}

// NewDurable ties a subscription engine to a position storage.
func NewDurable(engine *Engine, storage occurrent.PositionStorage, opts ...DurableOption) *Durable {
	d := &Durable{engine: engine, storage: storage, every: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe starts a durable subscription. If a position is stored for the
// id, delivery resumes after it; otherwise the current feed tail is persisted
// before the first delivery.
func (d *Durable) Subscribe(ctx context.Context, subscriptionID string, filter *occurrent.Filter, action occurrent.Action) (occurrent.Subscription, error) {
	startAt, err := d.resolveStartAt(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	delivered := 0
	wrapped := func(ctx context.Context, ce occurrent.ChangeEvent) error {
		if err := action(ctx, ce); err != nil {
			return err
		}
		delivered++
		if delivered%d.every != 0 {
			return nil
		}
		if err := d.storage.Save(ctx, subscriptionID, ce.Position); err != nil {
			return fmt.Errorf("failed to persist position: %w", err)
		}
		log.Tracef("persisted position for subscription %s", subscriptionID)
		return nil
	}

	return d.engine.Subscribe(subscriptionID, filter, startAt, wrapped)
}

func (d *Durable) resolveStartAt(ctx context.Context, subscriptionID string) (occurrent.StartAt, error) {
	position, err := d.storage.Read(ctx, subscriptionID)
	if err == nil {
		log.Tracef("resuming subscription %s from stored position", subscriptionID)
		return occurrent.StartAtPosition(position), nil
	}
	if !errors.Is(err, occurrent.ErrPositionNotFound) {
		return occurrent.StartAt{}, err
	}

	current, err := d.engine.Feed().CurrentPosition(ctx)
	if err != nil {
		return occurrent.StartAt{}, err
	}
	if err := d.storage.Save(ctx, subscriptionID, current); err != nil {
		return occurrent.StartAt{}, err
	}
	log.Tracef("initialized subscription %s at the feed tail", subscriptionID)
	return occurrent.StartAtPosition(current), nil
}

// Cancel stops one subscription. The stored position is kept.
func (d *Durable) Cancel(subscriptionID string) error {
	return d.engine.Cancel(subscriptionID)
}

// Shutdown stops every subscription. Stored positions are kept.
func (d *Durable) Shutdown(ctx context.Context) error {
	return d.engine.Shutdown(ctx)
}
