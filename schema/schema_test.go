// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package schema

import (
	"reflect"
	"testing"
	"time"
)

func TestMake(t *testing.T) {
	spec := Make(
		Column{"Pickup_Datetime ", Timestamp},
		Column{"passenger_count", Int},
		Column{"fare_amount", Float},
	)
	if got, want := spec.NumCol(), 3; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := spec.Col(0).Name, "pickup_datetime"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := spec.Index(" Passenger_Count"), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := spec.Index("tip_amount"), -1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := spec.String(), "pickup_datetime:timestamp,passenger_count:int,fare_amount:float"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMakePanic(t *testing.T) {
	for _, cols := range [][]Column{
		{{"a", Int}, {"A ", Float}},
		{{"", Int}},
		{{"a", Invalid}},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for %v", cols)
				}
			}()
			Make(cols...)
		}()
	}
}

func TestKind(t *testing.T) {
	if got, want := Timestamp.ElemType(), reflect.TypeOf(time.Time{}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Int.ElemType(), reflect.TypeOf(int32(0)); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Float.Sentinel().Interface(), float32(-1); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Int.Sentinel().Interface(), int32(-1); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !Timestamp.Sentinel().Interface().(time.Time).IsZero() {
		t.Error("timestamp sentinel not zero time")
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse("pickup_datetime:timestamp,passenger_count:int,fare_amount:float")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := spec.NumCol(), 3; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := spec.Col(2), (Column{"fare_amount", Float}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, bad := range []string{"", "a", "a:string", "a:int,a:int"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseAliases(t *testing.T) {
	aliases, err := ParseAliases("Tpep_Pickup_Datetime=pickup_datetime,trip_pickup_datetime=pickup_datetime")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := aliases.Resolve("tpep_pickup_datetime"), "pickup_datetime"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := aliases.Resolve("fare_amount"), "fare_amount"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := ParseAliases("a=b,a=c"); err == nil {
		t.Error("expected error for conflicting aliases")
	}
	if _, err := ParseAliases("a"); err == nil {
		t.Error("expected error for malformed alias")
	}
}
