// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"encoding/binary"
	"math"
	"reflect"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/schema"
	"github.com/grailbio/reconcile/typecheck"
	"github.com/spaolacci/murmur3"
)

// Partition splits batch b into width partitions by the murmur3 hash
// of the named key column, so that downstream consumers can process
// each partition independently. Partitioning is deterministic: rows
// with equal keys land in the same partition, and the same batch
// always partitions identically. Row order within a partition
// follows the batch's row order. Partition panics if width is not
// positive; it returns an error if the key column is absent or of a
// type it cannot hash.
func Partition(b batch.Batch, key string, width int) ([]batch.Batch, error) {
	if width <= 0 {
		typecheck.Panicf(1, "reconcile: partition width %d <= 0", width)
	}
	keyIdx := b.Index(schema.Normalize(key))
	if keyIdx < 0 {
		return nil, errors.E(errors.Invalid, "reconcile: partition: no key column "+key)
	}
	hash, err := hasher(b.Col(keyIdx))
	if err != nil {
		return nil, err
	}
	rows := make([][]int, width)
	for row := 0; row < b.Len(); row++ {
		p := int(hash(row) % uint32(width))
		rows[p] = append(rows[p], row)
	}
	parts := make([]batch.Batch, width)
	for p := range parts {
		cols := make([]batch.Column, b.NumCol())
		for c := 0; c < b.NumCol(); c++ {
			cols[c] = gather(b.Col(c), rows[p])
		}
		parts[p] = batch.Columns(cols...)
	}
	return parts, nil
}

// hasher returns a function hashing the column's rows. Key types are
// limited to the element types a reconciled batch can contain.
func hasher(col batch.Column) (func(row int) uint32, error) {
	switch vals := col.Interface().(type) {
	case []string:
		return func(row int) uint32 {
			return murmur3.Sum32([]byte(vals[row]))
		}, nil
	case []int32:
		return func(row int) uint32 {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], uint32(vals[row]))
			return murmur3.Sum32(buf[:])
		}, nil
	case []float32:
		return func(row int) uint32 {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(vals[row]))
			return murmur3.Sum32(buf[:])
		}, nil
	case []time.Time:
		return func(row int) uint32 {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(vals[row].UnixNano()))
			return murmur3.Sum32(buf[:])
		}, nil
	}
	return nil, errors.E(errors.Invalid, "reconcile: partition: cannot hash key column "+col.Name())
}

// gather returns a copy of the column restricted to the given rows.
func gather(col batch.Column, rows []int) batch.Column {
	out := reflect.MakeSlice(col.Value().Type(), len(rows), len(rows))
	var miss []bool
	for i, row := range rows {
		out.Index(i).Set(col.Index(row))
		if col.Missing(row) {
			if miss == nil {
				miss = make([]bool, len(rows))
			}
			miss[i] = true
		}
	}
	gathered := batch.ColumnOf(col.Name(), out.Interface())
	if miss != nil {
		gathered = gathered.WithMissing(miss)
	}
	return gathered
}
