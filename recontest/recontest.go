// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package recontest provides utilities for testing code that uses
// reconcile. The utilities here are not optimized for performance or
// robustness; they are strictly intended for unit testing.
package recontest

import (
	"context"
	"testing"

	"github.com/grailbio/reconcile"
	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/batchio"
)

// ReadAll drains the reader, concatenating its batches. Errors are
// reported as fatal to the provided t instance.
func ReadAll(t *testing.T, r batchio.Reader) batch.Batch {
	t.Helper()
	b, err := batchio.ReadAll(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// Reconcile reconciles the raw batch with the provided reconciler.
// Errors are reported as fatal to the provided t instance.
func Reconcile(t *testing.T, rec *reconcile.Reconciler, raw batch.Batch) batch.Batch {
	t.Helper()
	out, err := rec.Reconcile(raw)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// Run reconciles all batches from the provided sources using a
// single-use local session and returns their concatenation. Errors
// are reported as fatal to the provided t instance.
func Run(t *testing.T, rec *reconcile.Reconciler, sources ...batchio.Reader) batch.Batch {
	t.Helper()
	sess := reconcile.Start()
	defer sess.Shutdown()
	out, err := sess.Run(context.Background(), rec, sources...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}
