// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/schema"
)

// timestampLayouts are the accepted textual timestamp forms, tried
// in order. Source vintages use the space-separated form; RFC3339
// and bare dates appear in later exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

var (
	typeOfTime    = reflect.TypeOf(time.Time{})
	errBadType    = errors.New("unsupported source column type")
	errNotATime   = errors.New("numeric column cannot be coerced to timestamp")
	errOutOfRange = errors.New("value out of range for target type")
)

// coerce converts the column to the target kind under the canonical
// name. Textual columns are parsed strictly, with entries that are
// empty (after trimming) or masked replaced by the kind's sentinel.
// Numeric columns are converted elementwise to the target type, with
// masked entries and NaNs replaced by the sentinel. Timestamp
// columns pass through with sentinel fill. The input column is never
// modified; coerce always allocates fresh storage.
func coerce(col batch.Column, canonical string, kind schema.Kind) (batch.Column, error) {
	switch elem := col.ElemType(); {
	case elem.Kind() == reflect.String:
		return coerceText(col, canonical, kind)
	case elem == typeOfTime:
		if kind != schema.Timestamp {
			return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Err: errBadType}
		}
		return coerceTime(col, canonical), nil
	case isNumeric(elem.Kind()):
		if kind == schema.Timestamp {
			return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Err: errNotATime}
		}
		return coerceNumeric(col, canonical, kind)
	default:
		return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Err: errBadType}
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// coerceText parses a textual column into the target kind. Sentinel
// substitution applies only to entries that are empty after
// trimming (or masked): malformed non-empty text is a parse error,
// never silently mapped to the sentinel.
func coerceText(col batch.Column, canonical string, kind schema.Kind) (batch.Column, error) {
	vals := col.Interface().([]string)
	switch kind {
	case schema.Int:
		out := make([]int32, len(vals))
		sentinel := kind.Sentinel().Interface().(int32)
		for i, s := range vals {
			s = strings.TrimSpace(s)
			if s == "" || col.Missing(i) {
				out[i] = sentinel
				continue
			}
			v, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Value: s, Err: err}
			}
			out[i] = int32(v)
		}
		return batch.ColumnOf(canonical, out), nil
	case schema.Float:
		out := make([]float32, len(vals))
		sentinel := kind.Sentinel().Interface().(float32)
		for i, s := range vals {
			s = strings.TrimSpace(s)
			if s == "" || col.Missing(i) {
				out[i] = sentinel
				continue
			}
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Value: s, Err: err}
			}
			out[i] = float32(v)
		}
		return batch.ColumnOf(canonical, out), nil
	case schema.Timestamp:
		out := make([]time.Time, len(vals))
		sentinel := kind.Sentinel().Interface().(time.Time)
		for i, s := range vals {
			s = strings.TrimSpace(s)
			if s == "" || col.Missing(i) {
				out[i] = sentinel
				continue
			}
			v, err := parseTimestamp(s)
			if err != nil {
				return batch.Column{}, &CoerceError{Column: canonical, Kind: kind, Value: s, Err: err}
			}
			out[i] = v
		}
		return batch.ColumnOf(canonical, out), nil
	}
	panic("reconcile: invalid kind")
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var v time.Time
		if v, err = time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, err
}

// coerceNumeric narrows (or widens) a numeric column to the target
// kind's element type. Masked entries and NaNs become the sentinel.
// Values that do not fit the target type are errors, never silently
// wrapped or rounded to infinity.
func coerceNumeric(col batch.Column, canonical string, kind schema.Kind) (batch.Column, error) {
	n := col.Len()
	elem := kind.ElemType()
	out := reflect.MakeSlice(reflect.SliceOf(elem), n, n)
	sentinel := kind.Sentinel()
	isFloat := col.ElemType().Kind() == reflect.Float32 || col.ElemType().Kind() == reflect.Float64
	for i := 0; i < n; i++ {
		v := col.Index(i)
		if col.Missing(i) || isFloat && math.IsNaN(v.Float()) {
			out.Index(i).Set(sentinel)
			continue
		}
		if !fits(v, kind) {
			return batch.Column{}, &CoerceError{
				Column: canonical,
				Kind:   kind,
				Value:  fmt.Sprint(v.Interface()),
				Err:    errOutOfRange,
			}
		}
		out.Index(i).Set(v.Convert(elem))
	}
	return batch.ColumnOf(canonical, out.Interface()), nil
}

// fits reports whether the numeric value v is representable in the
// target kind's element type.
func fits(v reflect.Value, kind schema.Kind) bool {
	switch k := v.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		i := v.Int()
		return kind != schema.Int || math.MinInt32 <= i && i <= math.MaxInt32
	case k >= reflect.Uint && k <= reflect.Uint64:
		return kind != schema.Int || v.Uint() <= math.MaxInt32
	default:
		f := v.Float()
		if kind == schema.Int {
			return math.MinInt32 <= f && f <= math.MaxInt32
		}
		return math.IsInf(f, 0) || math.Abs(f) <= math.MaxFloat32
	}
}

// coerceTime copies a timestamp column, filling masked entries with
// the sentinel.
func coerceTime(col batch.Column, canonical string) batch.Column {
	vals := col.Interface().([]time.Time)
	out := make([]time.Time, len(vals))
	sentinel := schema.Timestamp.Sentinel().Interface().(time.Time)
	for i, v := range vals {
		if col.Missing(i) {
			out[i] = sentinel
			continue
		}
		out[i] = v
	}
	return batch.ColumnOf(canonical, out)
}
