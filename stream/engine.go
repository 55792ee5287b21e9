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
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/slinkydeveloper/occurrent"
)

// Engine runs subscriptions over a change feed. Each subscription occupies
// one worker goroutine for its lifetime; delivery within a subscription is
// serial.
type Engine struct {
	feed       *ChangeFeed
	newBackOff func() backoff.BackOff

	mu     sync.Mutex
	subs   map[string]*Handle
	closed bool
	group  errgroup.Group
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithBackOffFactory replaces the retry policy used for failing actions and
// for reopening a broken feed cursor.
func WithBackOffFactory(factory func() backoff.BackOff) EngineOption {
	return func(e *Engine) { e.newBackOff = factory }
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}

// NewEngine builds a subscription engine over a change feed.
func NewEngine(feed *ChangeFeed, opts ...EngineOption) *Engine {
	e := &Engine{
		feed:       feed,
		newBackOff: defaultBackOff,
		subs:       map[string]*Handle{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ occurrent.Subscriptions = (*Engine)(nil)

// Feed returns the change feed the engine delivers from.
func (e *Engine) Feed() *ChangeFeed { return e.feed }

// Handle identifies a running subscription.
type Handle struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

var _ occurrent.Subscription = (*Handle)(nil)

// ID returns the subscription id.
func (h *Handle) ID() string { return h.id }

// Done is closed when the subscription worker has stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the terminal error of a permanently failed subscription.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) setErr(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Subscribe starts delivery for a subscription id. A nil filter delivers
// every event; the zero StartAt starts at the current feed tail.
func (e *Engine) Subscribe(subscriptionID string, filter *occurrent.Filter, startAt occurrent.StartAt, action occurrent.Action) (occurrent.Subscription, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("subscription engine is shut down")
	}
	if _, exists := e.subs[subscriptionID]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("subscription %q already exists", subscriptionID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{id: subscriptionID, cancel: cancel, done: make(chan struct{})}
	e.subs[subscriptionID] = h
	e.mu.Unlock()

	e.group.Go(func() error {
		defer close(h.done)
		err := e.run(ctx, h, filter, startAt, action)
		if err != nil {
			failure := &occurrent.SubscriptionFailedError{SubscriptionID: subscriptionID, Err: err}
			h.setErr(failure)
			log.Errorf("subscription %s failed permanently: %v", subscriptionID, err)
			return failure
		}
		return nil
	})

	log.Infof("subscription %s started", subscriptionID)
	return h, nil
}

// SubscribeFromNow subscribes with no filter, starting at the feed tail.
func (e *Engine) SubscribeFromNow(subscriptionID string, action occurrent.Action) (occurrent.Subscription, error) {
	return e.Subscribe(subscriptionID, nil, occurrent.StartAtNow(), action)
}

// run is the subscription worker loop: watch the feed, deliver each event
// with retry, reopen the feed from the last delivered position on transient
// cursor failures.
func (e *Engine) run(ctx context.Context, h *Handle, filter *occurrent.Filter, startAt occurrent.StartAt, action occurrent.Action) error {
	resume, _ := startAt.Position()

	deliver := func(ctx context.Context, ce occurrent.ChangeEvent) error {
		attempt := func() error { return action(ctx, ce) }
		if err := backoff.Retry(attempt, backoff.WithContext(e.newBackOff(), ctx)); err != nil {
			return err
		}
		// only a delivered event moves the resume position
		resume = ce.Position
		return nil
	}

	reopen := func() error {
		err := e.feed.Watch(ctx, filter, resume, deliver)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = fmt.Errorf("change feed cursor closed")
		}
		log.Errorf("subscription %s: reopening change feed: %v", h.id, err)
		return err
	}

	err := backoff.Retry(reopen, backoff.WithContext(e.newBackOff(), ctx))
	if ctx.Err() != nil {
		// cancellation and shutdown are a clean stop
		return nil
	}
	return err
}

// Cancel stops one subscription and waits for its worker to finish, bounded
// by the in-flight callback.
func (e *Engine) Cancel(subscriptionID string) error {
	e.mu.Lock()
	h, ok := e.subs[subscriptionID]
	delete(e.subs, subscriptionID)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("no subscription %q", subscriptionID)
	}

	h.cancel()
	<-h.done
	log.Infof("subscription %s cancelled", subscriptionID)
	return nil
}

// Shutdown cancels every subscription and waits for in-flight callbacks
// within the context's grace window. It is idempotent.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	handles := make([]*Handle, 0, len(e.subs))
	for _, h := range e.subs {
		handles = append(handles, h)
	}
	e.subs = map[string]*Handle{}
	e.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}

	done := make(chan struct{})
	var err error
	go func() {
		err = e.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
