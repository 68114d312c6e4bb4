// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/schema"
	"github.com/grailbio/reconcile/typecheck"
)

// A Reconciler converts raw batches onto the canonical shape
// described by its spec. Reconcilers are stateless and safe for
// concurrent use; Reconcile is a pure function of its input.
type Reconciler struct {
	spec    schema.Spec
	aliases schema.Aliases
}

// New returns a Reconciler for the provided spec and alias table.
// Alias names are normalized. New panics if the spec is empty, if an
// alias maps to a column not in the spec, or if an alias shadows a
// different canonical column.
func New(spec schema.Spec, aliases schema.Aliases) *Reconciler {
	if spec.NumCol() == 0 {
		typecheck.Panic(1, "reconcile: empty spec")
	}
	normalized := make(schema.Aliases, len(aliases))
	for alias, canonical := range aliases {
		alias, canonical = schema.Normalize(alias), schema.Normalize(canonical)
		if spec.Index(canonical) < 0 {
			typecheck.Panicf(1, "reconcile: alias %q maps to unknown column %q", alias, canonical)
		}
		if spec.Index(alias) >= 0 && canonical != alias {
			typecheck.Panicf(1, "reconcile: alias %q shadows a canonical column", alias)
		}
		normalized[alias] = canonical
	}
	return &Reconciler{spec: spec, aliases: normalized}
}

// Spec returns the reconciler's canonical spec.
func (r *Reconciler) Spec() schema.Spec { return r.spec }

// Reconcile converts the raw batch onto the reconciler's canonical
// schema: column names are normalized, aliases resolved, columns
// absent from the spec dropped, and retained columns coerced to
// their target kinds with missing entries replaced by sentinels. The
// returned batch contains exactly the spec's columns, in spec order,
// with no missing entries. The raw batch is not modified.
//
// Reconcile returns a *MismatchError if a canonical column cannot be
// resolved from the raw batch, and a *CoerceError if a column's
// values cannot be represented in the target kind. In either case no
// partial output is returned.
func (r *Reconciler) Reconcile(raw batch.Batch) (batch.Batch, error) {
	resolved := make(map[string]batch.Column, r.spec.NumCol())
	var dropped []string
	for i := 0; i < raw.NumCol(); i++ {
		col := raw.Col(i)
		name := r.aliases.Resolve(schema.Normalize(col.Name()))
		if r.spec.Index(name) < 0 {
			dropped = append(dropped, col.Name())
			continue
		}
		if _, ok := resolved[name]; ok {
			return nil, &MismatchError{Column: name, Ambiguous: true}
		}
		resolved[name] = col
	}
	if len(dropped) > 0 {
		log.Debug.Printf("reconcile: dropping columns %q", dropped)
	}
	out := make([]batch.Column, r.spec.NumCol())
	for i := 0; i < r.spec.NumCol(); i++ {
		canonical := r.spec.Col(i)
		col, ok := resolved[canonical.Name]
		if !ok {
			return nil, &MismatchError{Column: canonical.Name}
		}
		coerced, err := coerce(col, canonical.Name, canonical.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return batch.Columns(out...), nil
}
