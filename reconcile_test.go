// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"reflect"
	"testing"
	"time"

	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/schema"
)

var (
	taxiSpec = schema.Make(
		schema.Column{Name: "pickup_datetime", Kind: schema.Timestamp},
		schema.Column{Name: "passenger_count", Kind: schema.Int},
		schema.Column{Name: "fare_amount", Kind: schema.Float},
	)
	taxiAliases = schema.Aliases{
		"tpep_pickup_datetime": "pickup_datetime",
		"trip_pickup_datetime": "pickup_datetime",
	}
)

func taxiReconciler(t *testing.T) *Reconciler {
	t.Helper()
	return New(taxiSpec, taxiAliases)
}

func rawTaxiBatch() batch.Batch {
	return batch.Columns(
		batch.ColumnOf("Tpep_Pickup_Datetime ", []string{
			"2015-01-15 19:05:39",
			"2015-01-15 19:23:42",
			"2015-01-16 08:10:00",
		}),
		batch.ColumnOf("passenger_count", []string{"1", "", "2"}),
		batch.ColumnOf("fare_amount", []string{"12.5", "", "9.0"}),
		batch.ColumnOf("store_and_fwd_flag", []string{"N", "N", "Y"}),
	)
}

func TestReconcile(t *testing.T) {
	rec := taxiReconciler(t)
	out, err := rec.Reconcile(rawTaxiBatch())
	if err != nil {
		t.Fatal(err)
	}
	// Exactly the spec's columns, in spec order; the vintage-specific
	// store_and_fwd_flag column is dropped.
	if got, want := out.Names(), []string{"pickup_datetime", "passenger_count", "fare_amount"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := out.Col(1).Interface(), []int32{1, -1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := out.Col(2).Interface(), []float32{12.5, -1, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	times := out.Col(0).Interface().([]time.Time)
	if got, want := times[0], time.Date(2015, 1, 15, 19, 5, 39, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	// No missing entries remain.
	for i := 0; i < out.NumCol(); i++ {
		if got, want := out.Col(i).NumMissing(), 0; got != want {
			t.Errorf("column %d: got %v missing, want %v", i, got, want)
		}
	}
}

func TestReconcilePure(t *testing.T) {
	rec := taxiReconciler(t)
	raw := rawTaxiBatch()
	names := append([]string{}, raw.Names()...)
	counts := append([]string{}, raw.Col(1).Interface().([]string)...)
	if _, err := rec.Reconcile(raw); err != nil {
		t.Fatal(err)
	}
	if got, want := raw.Names(), names; !reflect.DeepEqual(got, want) {
		t.Errorf("raw batch names mutated: got %v, want %v", got, want)
	}
	if got, want := raw.Col(1).Interface().([]string), counts; !reflect.DeepEqual(got, want) {
		t.Errorf("raw batch data mutated: got %v, want %v", got, want)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	rec := taxiReconciler(t)
	once, err := rec.Reconcile(rawTaxiBatch())
	if err != nil {
		t.Fatal(err)
	}
	twice, err := rec.Reconcile(once)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.Equal(once, twice) {
		t.Errorf("not idempotent:\n%s\n%s", once.TabString(), twice.TabString())
	}
}

func TestReconcileAlias(t *testing.T) {
	rec := taxiReconciler(t)
	// Two vintages name the pickup timestamp differently; both must
	// produce identically named output.
	vintage2009 := batch.Columns(
		batch.ColumnOf("Trip_Pickup_DateTime", []string{"2009-03-01 00:00:00"}),
		batch.ColumnOf("Passenger_Count", []string{"1"}),
		batch.ColumnOf("Fare_Amount ", []string{"4.5"}),
	)
	vintage2015 := batch.Columns(
		batch.ColumnOf("tpep_pickup_datetime", []string{"2009-03-01 00:00:00"}),
		batch.ColumnOf("passenger_count", []string{"1"}),
		batch.ColumnOf("fare_amount", []string{"4.5"}),
	)
	out2009, err := rec.Reconcile(vintage2009)
	if err != nil {
		t.Fatal(err)
	}
	out2015, err := rec.Reconcile(vintage2015)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.Equal(out2009, out2015) {
		t.Errorf("vintages disagree:\n%s\n%s", out2009.TabString(), out2015.TabString())
	}
}

func TestReconcileMissingColumn(t *testing.T) {
	rec := taxiReconciler(t)
	raw := batch.Columns(
		batch.ColumnOf("pickup_datetime", []string{"2015-01-15 19:05:39"}),
		batch.ColumnOf("fare_amount", []string{"12.5"}),
	)
	out, err := rec.Reconcile(raw)
	if out != nil {
		t.Error("partial output returned")
	}
	merr, ok := err.(*MismatchError)
	if !ok {
		t.Fatalf("got %v, want *MismatchError", err)
	}
	if got, want := merr.Column, "passenger_count"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if merr.Ambiguous {
		t.Error("unexpected ambiguous mismatch")
	}
}

func TestReconcileAmbiguousColumn(t *testing.T) {
	rec := taxiReconciler(t)
	// Alias and canonical name present together: the batch is
	// ambiguous and must be rejected.
	raw := batch.Columns(
		batch.ColumnOf("pickup_datetime", []string{"2015-01-15 19:05:39"}),
		batch.ColumnOf("Tpep_Pickup_Datetime", []string{"2015-01-15 19:05:39"}),
		batch.ColumnOf("passenger_count", []string{"1"}),
		batch.ColumnOf("fare_amount", []string{"12.5"}),
	)
	_, err := rec.Reconcile(raw)
	merr, ok := err.(*MismatchError)
	if !ok {
		t.Fatalf("got %v, want *MismatchError", err)
	}
	if !merr.Ambiguous {
		t.Error("expected ambiguous mismatch")
	}
}

func TestReconcileMalformed(t *testing.T) {
	rec := taxiReconciler(t)
	raw := batch.Columns(
		batch.ColumnOf("tpep_pickup_datetime", []string{"2015-01-15 19:05:39"}),
		batch.ColumnOf("passenger_count", []string{"1"}),
		batch.ColumnOf("fare_amount", []string{"12.5.3"}),
	)
	out, err := rec.Reconcile(raw)
	if out != nil {
		t.Error("partial output returned")
	}
	cerr, ok := err.(*CoerceError)
	if !ok {
		t.Fatalf("got %v, want *CoerceError", err)
	}
	if got, want := cerr.Column, "fare_amount"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := cerr.Value, "12.5.3"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNewPanics(t *testing.T) {
	for _, c := range []struct {
		spec    schema.Spec
		aliases schema.Aliases
	}{
		{schema.Make(), nil},
		{taxiSpec, schema.Aliases{"x": "unknown_column"}},
		{taxiSpec, schema.Aliases{"fare_amount": "passenger_count"}},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for aliases %v", c.aliases)
				}
			}()
			New(c.spec, c.aliases)
		}()
	}
}
