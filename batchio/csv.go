// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package batchio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/batch"
)

// CSVReader reads a CSV stream into textual batches. The stream's
// first record is taken as the header; its fields become the batch
// column names, verbatim: stray whitespace and casing are preserved
// for the reconciler to normalize. All columns are produced as
// string columns; empty cells are left as empty strings, which the
// reconciler treats as missing.
type CSVReader struct {
	csv   *csv.Reader
	chunk int

	names  []string
	err    error
	closer io.Closer
}

// NewCSVReader returns a CSVReader that reads batches of up to chunk
// rows from r. If chunk is <= 0, a default chunk size is used.
func NewCSVReader(r io.Reader, chunk int) *CSVReader {
	if chunk <= 0 {
		chunk = defaultChunksize
	}
	c := csv.NewReader(r)
	c.ReuseRecord = true
	return &CSVReader{csv: c, chunk: chunk}
}

// OpenCSV opens the CSV file at the provided path (any scheme
// registered with package file, e.g. local paths or s3:// URLs) and
// returns a CSVReader of batches of up to chunk rows. The underlying
// file is closed when the reader returns EOF or any other error.
func OpenCSV(ctx context.Context, path string, chunk int) (*CSVReader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r := NewCSVReader(f.Reader(ctx), chunk)
	r.closer = closerFunc(func() error { return f.Close(ctx) })
	return r, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Read implements Reader.
func (r *CSVReader) Read(ctx context.Context) (batch.Batch, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, err := r.read()
	if err != nil {
		r.err = err
		if r.closer != nil {
			if cerr := r.closer.Close(); cerr != nil {
				log.Error.Printf("batchio: close csv: %v", cerr)
			}
			r.closer = nil
		}
	}
	return b, err
}

func (r *CSVReader) read() (batch.Batch, error) {
	if r.names == nil {
		names, err := r.csv.Read()
		if err == io.EOF {
			return nil, EOF
		}
		if err != nil {
			return nil, errors.E(err, "batchio: read csv header")
		}
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if seen[name] {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("batchio: duplicate csv column %q", name))
			}
			seen[name] = true
		}
		r.names = append([]string{}, names...)
	}
	cols := make([][]string, len(r.names))
	var n int
	for n = 0; n < r.chunk; n++ {
		record, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.E(err, "batchio: read csv record")
		}
		for i, field := range record {
			cols[i] = append(cols[i], field)
		}
	}
	if n == 0 {
		return nil, EOF
	}
	columns := make([]batch.Column, len(r.names))
	for i, name := range r.names {
		columns[i] = batch.ColumnOf(name, cols[i])
	}
	return batch.Columns(columns...), nil
}
