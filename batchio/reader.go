// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package batchio provides sources and sinks of reconcile batches:
// streaming readers over CSV data, gob-based persistence for
// reconciled batches, and utilities for composing and draining
// readers.
package batchio

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/reconcile/batch"
)

// defaultChunksize is the default number of rows in batches produced
// by readers in this package.
const defaultChunksize = 1024

// EOF is the error returned by Reader.Read when no more batches are
// available. EOF is intended as a sentinel error: it signals a
// graceful end of output. If output terminates unexpectedly, a
// different error should be returned.
var EOF = errors.New("EOF")

// A Reader represents a stateful stream of batches. Each call to
// Read returns the next available batch.
type Reader interface {
	// Read returns the next batch from the underlying source, or EOF
	// when no more batches are available. A batch returned by Read is
	// owned by the caller; subsequent calls do not invalidate it.
	//
	// Read should not be called concurrently.
	Read(ctx context.Context) (batch.Batch, error)
}

type multiReader struct {
	q   []Reader
	err error
}

// MultiReader returns a Reader that's the logical concatenation of
// the provided input readers. Once every underlying Reader has
// returned EOF, Read will return EOF, too. Non-EOF errors are
// returned immediately.
func MultiReader(readers ...Reader) Reader {
	return &multiReader{q: readers}
}

func (m *multiReader) Read(ctx context.Context) (batch.Batch, error) {
	if m.err != nil {
		return nil, m.err
	}
	for len(m.q) > 0 {
		b, err := m.q[0].Read(ctx)
		switch {
		case err == EOF:
			m.q = m.q[1:]
		case err != nil:
			m.err = err
			return nil, err
		default:
			return b, nil
		}
	}
	return nil, EOF
}

type batchReader struct {
	batch batch.Batch
	done  bool
}

// BatchReader returns a Reader that yields the provided batch once
// and then EOF.
func BatchReader(b batch.Batch) Reader {
	return &batchReader{batch: b}
}

func (r *batchReader) Read(ctx context.Context) (batch.Batch, error) {
	if r.done {
		return nil, EOF
	}
	r.done = true
	return r.batch, nil
}

// ErrReader returns a Reader that returns the provided error on
// every call to Read.
func ErrReader(err error) Reader {
	return errReader{err}
}

type errReader struct{ error }

func (r errReader) Read(ctx context.Context) (batch.Batch, error) {
	return nil, r.error
}

// ReadAll drains reader r, concatenating its batches into a single
// batch. All of r's batches must share a schema. ReadAll is not
// tuned for performance and is intended for testing and small
// inputs.
func ReadAll(ctx context.Context, r Reader) (batch.Batch, error) {
	var all batch.Batch
	for {
		b, err := r.Read(ctx)
		if err == EOF {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = batch.Append(all, b)
	}
}
