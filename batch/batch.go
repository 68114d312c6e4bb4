// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package batch contains definitions and utilities for reconcile
// batches. A batch is a list of named column vectors of equal length
// representing a buffer of tabular data as it is read from a source
// and reconciled. Columns carry an optional missing-value mask so
// that sources which distinguish null entries can surface them for
// sentinel substitution during reconciliation.
package batch

import (
	"bytes"
	"fmt"
	"reflect"
	"text/tabwriter"

	"github.com/grailbio/reconcile/typecheck"
)

// Column represents a single named column of values in a batch. The
// column's storage is always a Go slice, represented as a
// reflect.Value to support type polymorphism.
type Column struct {
	name  string
	value reflect.Value
	// miss marks missing entries. A nil miss means the column has no
	// missing entries. (Textual columns additionally treat empty
	// strings as missing; that policy belongs to reconciliation, not
	// to the column itself.)
	miss []bool
}

// ColumnOf returns a new column with the provided name whose storage
// is the given slice. ColumnOf panics if x is not a slice.
func ColumnOf(name string, x interface{}) Column {
	val := reflect.ValueOf(x)
	if val.Kind() != reflect.Slice {
		typecheck.Panicf(1, "batch: column %q: expected slice, got %v", name, val.Type())
	}
	return Column{name: name, value: val}
}

// WithMissing returns a copy of column c whose missing-entry mask is
// miss. WithMissing panics if the mask's length does not match the
// column's.
func (c Column) WithMissing(miss []bool) Column {
	if len(miss) != c.Len() {
		typecheck.Panicf(1, "batch: column %q: mask length %d does not match column length %d", c.name, len(miss), c.Len())
	}
	c.miss = miss
	return c
}

// Name returns the column's name, as it appeared in the source.
func (c Column) Name() string { return c.name }

// Rename returns a copy of the column under a new name. The copy
// shares the column's storage.
func (c Column) Rename(name string) Column {
	c.name = name
	return c
}

// Len returns the column's length.
func (c Column) Len() int {
	if !c.value.IsValid() {
		return 0
	}
	return c.value.Len()
}

// ElemType returns the element type of the column.
func (c Column) ElemType() reflect.Type { return c.value.Type().Elem() }

// Value returns the reflect.Value of the column's storage slice.
func (c Column) Value() reflect.Value { return c.value }

// Interface returns the column's storage slice as an empty interface.
func (c Column) Interface() interface{} { return c.value.Interface() }

// Index returns the value at index i of the column.
func (c Column) Index(i int) reflect.Value { return c.value.Index(i) }

// Missing tells whether the entry at index i is marked missing.
func (c Column) Missing(i int) bool { return c.miss != nil && c.miss[i] }

// NumMissing returns the number of entries marked missing.
func (c Column) NumMissing() int {
	var n int
	for _, m := range c.miss {
		if m {
			n++
		}
	}
	return n
}

// Slice returns the column sliced to rows i through j. The returned
// column shares the column's storage.
func (c Column) Slice(i, j int) Column {
	sliced := Column{name: c.name, value: c.value.Slice(i, j)}
	if c.miss != nil {
		sliced.miss = c.miss[i:j]
	}
	return sliced
}

// A Batch is a list of named column vectors of equal lengths (i.e.,
// it's rectangular). Batches provide a set of methods that operate
// over the underlying columns in a uniform fashion.
type Batch []Column

// Columns constructs a batch from the provided columns. Columns
// panics if column names are duplicated or column lengths do not
// match.
func Columns(cols ...Column) Batch {
	names := make(map[string]bool, len(cols))
	n := -1
	for i, col := range cols {
		if names[col.name] {
			typecheck.Panicf(1, "batch: duplicate column %q", col.name)
		}
		names[col.name] = true
		if n < 0 {
			n = col.Len()
		} else if col.Len() != n {
			typecheck.Panicf(1,
				"batch: inconsistent column lengths: "+
					"column %d (%q) has length %d, previous columns have length %d",
				i, col.name, col.Len(), n,
			)
		}
	}
	return Batch(cols)
}

// Len returns the number of rows in the batch.
func (b Batch) Len() int {
	if len(b) == 0 {
		return 0
	}
	return b[0].Len()
}

// NumCol returns the number of columns in the batch.
func (b Batch) NumCol() int { return len(b) }

// Col returns the ith column of the batch.
func (b Batch) Col(i int) Column { return b[i] }

// Index returns the index of the column with the provided name, or
// -1 if the batch has no such column. Names are matched exactly;
// normalization is the reconciler's concern.
func (b Batch) Index(name string) int {
	for i, col := range b {
		if col.name == name {
			return i
		}
	}
	return -1
}

// Names returns the batch's column names in column order.
func (b Batch) Names() []string {
	names := make([]string, len(b))
	for i, col := range b {
		names[i] = col.name
	}
	return names
}

// Slice returns the batch with rows i through j, analogous to Go's
// native slice operation. The returned batch shares the batch's
// storage.
func (b Batch) Slice(i, j int) Batch {
	if b == nil {
		return nil
	}
	sliced := make(Batch, len(b))
	for k, col := range b {
		sliced[k] = col.Slice(i, j)
	}
	return sliced
}

// Append appends the rows of batch g to the rows of batch f,
// returning the appended batch. Append panics if the batches do not
// share a schema: the same column names and element types in the
// same order. A nil f is treated as an empty batch of g's schema.
func Append(f, g Batch) Batch {
	if f == nil {
		f = make(Batch, len(g))
		for i, col := range g {
			f[i] = Column{name: col.name, value: reflect.Zero(col.value.Type())}
		}
	}
	if len(f) != len(g) {
		typecheck.Panicf(1, "batch: append: mismatched widths %d, %d", len(f), len(g))
	}
	appended := make(Batch, len(f))
	for i := range f {
		fc, gc := f[i], g[i]
		if fc.name != gc.name || fc.ElemType() != gc.ElemType() {
			typecheck.Panicf(1, "batch: append: column %d mismatch: %s %s, %s %s",
				i, fc.name, fc.ElemType(), gc.name, gc.ElemType())
		}
		col := Column{
			name:  fc.name,
			value: reflect.AppendSlice(fc.value, gc.value),
		}
		if fc.miss != nil || gc.miss != nil {
			miss := make([]bool, fc.Len()+gc.Len())
			copy(miss, fc.miss)
			copy(miss[fc.Len():], gc.miss)
			col.miss = miss
		}
		appended[i] = col
	}
	return appended
}

// Equal tells whether batches f and g are equal: the same column
// names, types, values, and missing-entry masks.
func Equal(f, g Batch) bool {
	if len(f) != len(g) || f.Len() != g.Len() {
		return false
	}
	for i := range f {
		fc, gc := f[i], g[i]
		if fc.name != gc.name || fc.ElemType() != gc.ElemType() {
			return false
		}
		if !reflect.DeepEqual(fc.Interface(), gc.Interface()) {
			return false
		}
		for row := 0; row < fc.Len(); row++ {
			if fc.Missing(row) != gc.Missing(row) {
				return false
			}
		}
	}
	return true
}

// TabString returns a tabularized string rendering of the batch,
// useful for debugging. Missing entries are rendered as "NA".
func (b Batch) TabString() string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 4, 4, 1, ' ', 0)
	for _, col := range b {
		fmt.Fprintf(tw, "%s\t", col.name)
	}
	fmt.Fprintln(tw)
	for row := 0; row < b.Len(); row++ {
		for _, col := range b {
			if col.Missing(row) {
				fmt.Fprint(tw, "NA\t")
			} else {
				fmt.Fprintf(tw, "%v\t", col.Index(row))
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	return buf.String()
}
