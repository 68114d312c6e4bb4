// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package batchio

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/reconcile/batch"
)

func init() {
	gob.Register([]string{})
	gob.Register([]int32{})
	gob.Register([]float32{})
	gob.Register([]time.Time{})
}

// gobColumn is the wire representation of a single column. Data
// holds the column's storage slice; only the column types produced
// by reconciliation (and strings) are registered with gob.
type gobColumn struct {
	Name string
	Data interface{}
	Miss []bool
}

type gobBatch struct {
	Cols []gobColumn
}

// An Encoder encodes batches to an underlying stream so that they
// can be recovered by a Decoder. A stream may contain any number of
// batches.
type Encoder struct {
	enc *gob.Encoder
}

// NewEncoder returns an Encoder that writes batches to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: gob.NewEncoder(w)}
}

// Encode encodes batch b onto the encoder's stream.
func (e *Encoder) Encode(b batch.Batch) error {
	g := gobBatch{Cols: make([]gobColumn, b.NumCol())}
	for i := 0; i < b.NumCol(); i++ {
		col := b.Col(i)
		g.Cols[i] = gobColumn{Name: col.Name(), Data: col.Interface()}
		for row := 0; row < col.Len(); row++ {
			if col.Missing(row) {
				if g.Cols[i].Miss == nil {
					g.Cols[i].Miss = make([]bool, col.Len())
				}
				g.Cols[i].Miss[row] = true
			}
		}
	}
	if err := e.enc.Encode(g); err != nil {
		return errors.E(err, "batchio: encode batch")
	}
	return nil
}

// A Decoder decodes batches from a stream written by an Encoder.
// Decoder implements Reader.
type Decoder struct {
	dec *gob.Decoder
	err error
}

// NewDecoder returns a Decoder that reads batches from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: gob.NewDecoder(r)}
}

// Read implements Reader: it decodes and returns the next batch from
// the stream, or EOF when the stream is exhausted.
func (d *Decoder) Read(ctx context.Context) (batch.Batch, error) {
	if d.err != nil {
		return nil, d.err
	}
	var g gobBatch
	if err := d.dec.Decode(&g); err != nil {
		if err == io.EOF {
			d.err = EOF
		} else {
			d.err = errors.E(err, "batchio: decode batch")
		}
		return nil, d.err
	}
	cols := make([]batch.Column, len(g.Cols))
	seen := make(map[string]bool, len(g.Cols))
	length := -1
	for i, gc := range g.Cols {
		if seen[gc.Name] {
			d.err = errors.E(errors.Invalid, fmt.Sprintf("batchio: decode batch: duplicate column %q", gc.Name))
			return nil, d.err
		}
		seen[gc.Name] = true
		v := reflect.ValueOf(gc.Data)
		if v.Kind() != reflect.Slice {
			d.err = errors.E(errors.Invalid, fmt.Sprintf("batchio: decode batch: column %q is not a slice", gc.Name))
			return nil, d.err
		}
		if length < 0 {
			length = v.Len()
		}
		if v.Len() != length || gc.Miss != nil && len(gc.Miss) != length {
			d.err = errors.E(errors.Invalid, fmt.Sprintf("batchio: decode batch: column %q has mismatched length", gc.Name))
			return nil, d.err
		}
		cols[i] = batch.ColumnOf(gc.Name, gc.Data)
		if gc.Miss != nil {
			cols[i] = cols[i].WithMissing(gc.Miss)
		}
	}
	return batch.Columns(cols...), nil
}
