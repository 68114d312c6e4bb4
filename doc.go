// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package reconcile maps heterogeneous tabular batches onto a single
canonical schema so that data originating from incompatible source
vintages can be safely concatenated and processed together. Yearly
CSV exports of the same logical dataset commonly drift: column names
change between vintages, export tooling injects stray whitespace into
headers, types widen or narrow, and missing entries appear wherever
an upstream system had nothing to say. Reconcile normalizes all of
this in one pass per batch.

A reconciliation is configured by a schema.Spec: the ordered set of
canonical columns, each with a target kind (timestamp, int, float),
and a schema.Aliases table mapping vintage-specific names onto
canonical ones. A Reconciler built from this configuration converts a
raw batch in five steps: column names are trimmed and lower-cased;
aliases are resolved; columns absent from the spec are dropped;
retained columns are coerced to their target kinds, with missing
entries replaced by a fixed sentinel; and the result is emitted with
exactly the spec's columns. A raw batch that lacks a required
canonical column, or that contains text that cannot be parsed into
its target kind, fails reconciliation for that batch; reconcile
never fabricates data beyond the declared sentinels.

Reconcilers are pure: they never mutate their input, they are safe
for concurrent use, and reconciling a reconciled batch is the
identity. Parallelism over many sources is provided by Session,
which carries explicit execution state (parallelism, status
reporting) instead of relying on process-global clients:

	sess := reconcile.Start(reconcile.Parallelism(8))
	defer sess.Shutdown()
	out, err := sess.Run(ctx, rec, sources...)

The batchio package provides batch sources (CSV over local or s3://
paths) and sinks (a gob-based codec); Partition splits reconciled
output by key hash for downstream parallel consumption.
*/
package reconcile
