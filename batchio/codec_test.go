// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package batchio

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/grailbio/reconcile/batch"
)

func TestCodec(t *testing.T) {
	const N = 100
	fz := fuzz.New()
	fz.NilChance(0)
	fz.NumElements(N, N)
	var (
		c0 []string
		c1 []int32
		c2 []float32
	)
	fz.Fuzz(&c0)
	fz.Fuzz(&c1)
	fz.Fuzz(&c2)
	miss := make([]bool, N)
	miss[0], miss[N-1] = true, true

	in := batch.Columns(
		batch.ColumnOf("vendor_id", c0),
		batch.ColumnOf("passenger_count", c1).WithMissing(miss),
		batch.ColumnOf("fare_amount", c2),
	)
	var b bytes.Buffer
	enc := NewEncoder(&b)
	if err := enc.Encode(in); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(in.Slice(0, 10)); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	dec := NewDecoder(&b)
	out, err := dec.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.Equal(in, out) {
		t.Error("first batch mismatch")
	}
	out, err = dec.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.Equal(in.Slice(0, 10), out) {
		t.Error("second batch mismatch")
	}
	if _, err = dec.Read(ctx); err != EOF {
		t.Errorf("got %v, want EOF", err)
	}
}

func TestDecoderMalformed(t *testing.T) {
	ctx := context.Background()
	for _, g := range []gobBatch{
		{Cols: []gobColumn{{Name: "a", Data: []int32{1}}, {Name: "a", Data: []int32{2}}}},
		{Cols: []gobColumn{{Name: "a", Data: "not a slice"}}},
		{Cols: []gobColumn{{Name: "a", Data: []int32{1, 2}}, {Name: "b", Data: []int32{1}}}},
		{Cols: []gobColumn{{Name: "a", Data: []int32{1, 2}, Miss: []bool{true}}}},
	} {
		var b bytes.Buffer
		if err := gob.NewEncoder(&b).Encode(g); err != nil {
			t.Fatal(err)
		}
		if _, err := NewDecoder(&b).Read(ctx); err == nil {
			t.Errorf("expected error decoding %v", g)
		}
	}
}
