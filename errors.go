// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"fmt"

	"github.com/grailbio/reconcile/schema"
)

// A MismatchError reports a raw batch whose columns cannot be
// resolved onto the canonical schema: either a required canonical
// column is absent (with no alias match), or multiple raw columns
// resolve to the same canonical column. Mismatches are fatal for the
// batch; no partial output is produced.
type MismatchError struct {
	// Column is the canonical column that could not be resolved.
	Column string
	// Ambiguous is true when more than one raw column resolved to
	// Column, false when no raw column did.
	Ambiguous bool
}

func (e *MismatchError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("schema mismatch: multiple columns resolve to canonical column %q", e.Column)
	}
	return fmt.Sprintf("schema mismatch: missing canonical column %q", e.Column)
}

// A CoerceError reports a column whose values could not be coerced
// into the target kind. Coercion failures are fatal for the batch:
// silently coercing malformed values to the sentinel would mask
// genuine data corruption.
type CoerceError struct {
	// Column is the canonical name of the offending column.
	Column string
	// Kind is the target kind.
	Kind schema.Kind
	// Value is the offending value, if the failure was a parse
	// failure on a single value.
	Value string
	// Err is the underlying cause.
	Err error
}

func (e *CoerceError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("cannot coerce column %q to %s: bad value %q: %v", e.Column, e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot coerce column %q to %s: %v", e.Column, e.Kind, e.Err)
}
