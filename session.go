// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/batchio"
)

// Session represents a reconcile execution context. A session
// carries the state that reconciliation runs share (target
// parallelism and status reporting) and is passed explicitly to
// every operation that fans work out, rather than living in process
// globals. A session is created by Start and released by Shutdown:
//
//	sess := reconcile.Start(reconcile.Parallelism(8))
//	defer sess.Shutdown()
//	out, err := sess.Run(ctx, rec, sources...)
type Session struct {
	context.Context
	cancel context.CancelFunc
	p      int
	status *status.Status

	mu   sync.Mutex
	done bool
}

// An Option represents a session configuration parameter value.
type Option func(s *Session)

// Parallelism configures the session with the provided target
// parallelism: the maximum number of sources reconciled at once.
func Parallelism(p int) Option {
	if p <= 0 {
		panic("reconcile.Parallelism: p <= 0")
	}
	return func(s *Session) {
		s.p = p
	}
}

// Status configures the session with a status object to which
// per-source run statuses are reported.
func Status(status *status.Status) Option {
	return func(s *Session) {
		s.status = status
	}
}

// Start creates a new session, configuring it according to the
// provided options. If no parallelism is configured, the session
// uses one worker per CPU.
func Start(options ...Option) *Session {
	s := new(Session)
	s.Context, s.cancel = context.WithCancel(context.Background())
	for _, opt := range options {
		opt(s)
	}
	if s.p == 0 {
		s.p = runtime.NumCPU()
	}
	return s
}

// Shutdown releases the session. Runs in flight are canceled; the
// session may not be used after Shutdown.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.cancel()
}

// Run reconciles every batch from the provided sources, in parallel
// across sources up to the session's parallelism, and returns the
// concatenation of the reconciled batches in source order. Each
// source is owned exclusively by one invocation, so no
// synchronization is imposed on the sources themselves; each
// invocation writes its result to a distinct slot. Run fails on the
// first source whose batch cannot be reconciled, identifying the
// source in the returned error.
func (s *Session) Run(ctx context.Context, rec *Reconciler, sources ...batchio.Reader) (batch.Batch, error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil, errors.E(errors.Fatal, "reconcile: run on shut-down session")
	}
	s.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		// Propagate session shutdown into the run.
		select {
		case <-s.Context.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	var group *status.Group
	if s.status != nil {
		group = s.status.Group("reconcile")
	}
	results := make([]batch.Batch, len(sources))
	err := traverse.Limit(s.p).Each(len(sources), func(i int) error {
		var task *status.Task
		if group != nil {
			task = group.Startf("source %d", i)
			defer task.Done()
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := sources[i].Read(ctx)
			if err == batchio.EOF {
				return nil
			}
			if err != nil {
				return errors.E(err, fmt.Sprintf("reconcile: source %d", i))
			}
			out, err := rec.Reconcile(raw)
			if err != nil {
				return errors.E(err, fmt.Sprintf("reconcile: source %d", i))
			}
			results[i] = batch.Append(results[i], out)
			if task != nil {
				task.Printf("%d rows", results[i].Len())
			}
		}
	})
	if err != nil {
		return nil, err
	}
	var all batch.Batch
	var rows int
	for _, res := range results {
		if res == nil {
			continue
		}
		rows += res.Len()
		all = batch.Append(all, res)
	}
	log.Debug.Printf("reconcile: %d sources, %d rows", len(sources), rows)
	return all, nil
}
