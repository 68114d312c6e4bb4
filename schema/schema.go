// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package schema describes canonical column schemas for reconcile.
// A Spec declares the set of canonical columns (name and target
// kind) onto which heterogeneous source batches are mapped, and an
// Aliases table maps vintage-specific column names onto their
// canonical ones. Specs and aliases are static configuration: they
// are declared by the user, never derived from data.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/grailbio/reconcile/typecheck"
)

// A Kind is the target semantic type of a canonical column.
type Kind int

const (
	// Invalid is the zero, invalid kind.
	Invalid Kind = iota
	// Timestamp columns hold time.Time values.
	Timestamp
	// Int columns hold signed 32-bit integers.
	Int
	// Float columns hold 32-bit floating point values.
	Float
)

var kindStrings = [...]string{
	Invalid:   "invalid",
	Timestamp: "timestamp",
	Int:       "int",
	Float:     "float",
}

// String returns the kind's name as accepted by ParseKind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindStrings[k]
}

var (
	typeOfTime    = reflect.TypeOf(time.Time{})
	typeOfInt32   = reflect.TypeOf(int32(0))
	typeOfFloat32 = reflect.TypeOf(float32(0))
)

// ElemType returns the Go element type of columns of kind k.
// ElemType panics if k is not a valid kind.
func (k Kind) ElemType() reflect.Type {
	switch k {
	case Timestamp:
		return typeOfTime
	case Int:
		return typeOfInt32
	case Float:
		return typeOfFloat32
	}
	panic("schema: invalid kind")
}

// Sentinel returns the value substituted for missing entries in
// columns of kind k: -1 for numeric kinds and the zero time for
// timestamps. Sentinel panics if k is not a valid kind.
func (k Kind) Sentinel() reflect.Value {
	switch k {
	case Timestamp:
		return reflect.ValueOf(time.Time{})
	case Int:
		return reflect.ValueOf(int32(-1))
	case Float:
		return reflect.ValueOf(float32(-1))
	}
	panic("schema: invalid kind")
}

// ParseKind parses a kind from its string form.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindStrings {
		if Kind(k) != Invalid && s == name {
			return Kind(k), nil
		}
	}
	return Invalid, fmt.Errorf("invalid kind %q", s)
}

// A Column declares one canonical column: its (normalized) name and
// its target kind.
type Column struct {
	Name string
	Kind Kind
}

// A Spec is an ordered set of canonical columns. Specs are immutable
// once constructed.
type Spec struct {
	cols  []Column
	index map[string]int
}

// Make returns a new Spec comprising the provided columns. Column
// names are normalized as by Normalize. Make panics if a column name
// is empty or duplicated, or if a kind is invalid.
func Make(cols ...Column) Spec {
	spec := Spec{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, col := range cols {
		col.Name = Normalize(col.Name)
		if col.Name == "" {
			typecheck.Panicf(1, "schema: empty column name at index %d", i)
		}
		if _, ok := spec.index[col.Name]; ok {
			typecheck.Panicf(1, "schema: duplicate column %q", col.Name)
		}
		switch col.Kind {
		case Timestamp, Int, Float:
		default:
			typecheck.Panicf(1, "schema: column %q has invalid kind", col.Name)
		}
		spec.cols[i] = col
		spec.index[col.Name] = i
	}
	return spec
}

// NumCol returns the number of columns in the spec.
func (s Spec) NumCol() int { return len(s.cols) }

// Col returns the ith column of the spec.
func (s Spec) Col(i int) Column { return s.cols[i] }

// Index returns the index of the named canonical column, or -1 if
// the spec does not contain it. The name is normalized before
// lookup.
func (s Spec) Index(name string) int {
	i, ok := s.index[Normalize(name)]
	if !ok {
		return -1
	}
	return i
}

// String returns a human-readable rendering of the spec in the form
// accepted by Parse.
func (s Spec) String() string {
	elems := make([]string, len(s.cols))
	for i, col := range s.cols {
		elems[i] = col.Name + ":" + col.Kind.String()
	}
	return strings.Join(elems, ",")
}

// Parse parses a spec from its compact textual form
//
//	name:kind,name:kind,...
//
// where kind is one of "timestamp", "int", or "float". Parse is
// intended for flag and configuration values.
func Parse(s string) (Spec, error) {
	if s == "" {
		return Spec{}, fmt.Errorf("empty spec")
	}
	var cols []Column
	for _, elem := range strings.Split(s, ",") {
		parts := strings.SplitN(elem, ":", 2)
		if len(parts) != 2 {
			return Spec{}, fmt.Errorf("invalid spec column %q", elem)
		}
		kind, err := ParseKind(strings.TrimSpace(parts[1]))
		if err != nil {
			return Spec{}, fmt.Errorf("invalid spec column %q: %v", elem, err)
		}
		cols = append(cols, Column{Name: parts[0], Kind: kind})
	}
	spec := func() (spec Spec, err error) {
		defer func() {
			if e := recover(); e != nil {
				err = fmt.Errorf("invalid spec %q: %v", s, e)
			}
		}()
		return Make(cols...), nil
	}
	return spec()
}

// Aliases maps vintage-specific column names onto canonical column
// names. Both sides of the mapping are matched after normalization.
type Aliases map[string]string

// Resolve returns the canonical name for the provided (normalized)
// column name, or the name itself if no alias is declared for it.
func (a Aliases) Resolve(name string) string {
	if canonical, ok := a[name]; ok {
		return canonical
	}
	return name
}

// ParseAliases parses an alias table from its compact textual form
//
//	alias=canonical,alias=canonical,...
func ParseAliases(s string) (Aliases, error) {
	if s == "" {
		return nil, nil
	}
	aliases := make(Aliases)
	for _, elem := range strings.Split(s, ",") {
		parts := strings.SplitN(elem, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid alias %q", elem)
		}
		alias, canonical := Normalize(parts[0]), Normalize(parts[1])
		if alias == "" || canonical == "" {
			return nil, fmt.Errorf("invalid alias %q", elem)
		}
		if other, ok := aliases[alias]; ok && other != canonical {
			return nil, fmt.Errorf("conflicting aliases for %q: %q, %q", alias, other, canonical)
		}
		aliases[alias] = canonical
	}
	return aliases, nil
}

// Normalize returns the normalized form of a column name: leading
// and trailing whitespace trimmed, and the remainder lower-cased.
// Source vintages disagree on casing, and some export tooling
// injects stray spaces into header names; all name matching in
// reconcile happens on normalized names.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
