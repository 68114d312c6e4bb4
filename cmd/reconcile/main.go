// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Reconcile normalizes heterogeneous CSV exports onto a canonical
// schema and writes the result as gob-encoded batches, optionally
// split into partitions by a key column. Inputs may be local paths
// or s3:// URLs.
//
// For example, to unify multi-vintage taxi trip exports:
//
//	reconcile -spec 'pickup_datetime:timestamp,passenger_count:int,fare_amount:float' \
//		-aliases 'tpep_pickup_datetime=pickup_datetime,trip_pickup_datetime=pickup_datetime' \
//		-partitions 8 -key pickup_datetime -o s3://bucket/taxi/reconciled \
//		s3://bucket/taxi/2009.csv s3://bucket/taxi/2015.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/base/status"
	"golang.org/x/sync/errgroup"

	"github.com/grailbio/reconcile"
	"github.com/grailbio/reconcile/batch"
	"github.com/grailbio/reconcile/batchio"
	"github.com/grailbio/reconcile/schema"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	var (
		specFlag   = flag.String("spec", "", "canonical schema as name:kind,... (kinds: timestamp, int, float)")
		aliasFlag  = flag.String("aliases", "", "alias table as alias=canonical,...")
		chunk      = flag.Int("chunk", 1024, "rows per batch read from each input")
		p          = flag.Int("p", 0, "target parallelism; 0 means one per CPU")
		width      = flag.Int("partitions", 1, "number of output partitions")
		key        = flag.String("key", "", "canonical column by which output is partitioned")
		out        = flag.String("o", "", "output path prefix")
		showStatus = flag.Bool("status", false, "display continuous status on the console")
	)
	log.AddFlags()
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: reconcile -spec spec [flags] path...\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if *specFlag == "" || *out == "" || flag.NArg() == 0 {
		flag.Usage()
	}
	if *width > 1 && *key == "" {
		log.Fatal("reconcile: -partitions requires -key")
	}

	spec, err := schema.Parse(*specFlag)
	must.Nil(err, "parsing -spec")
	aliases, err := schema.ParseAliases(*aliasFlag)
	must.Nil(err, "parsing -aliases")
	rec := reconcile.New(spec, aliases)

	var runStatus status.Status
	options := []reconcile.Option{reconcile.Status(&runStatus)}
	if *p > 0 {
		options = append(options, reconcile.Parallelism(*p))
	}
	sess := reconcile.Start(options...)
	defer sess.Shutdown()
	if *showStatus {
		var console status.Reporter
		go console.Go(os.Stdout, &runStatus)
	}

	ctx := context.Background()
	sources := make([]batchio.Reader, flag.NArg())
	for i, path := range flag.Args() {
		sources[i], err = batchio.OpenCSV(ctx, path, *chunk)
		must.Nil(err, "opening ", path)
	}
	all, err := sess.Run(ctx, rec, sources...)
	if err != nil {
		log.Fatal(err)
	}
	if all == nil {
		log.Printf("reconcile: no rows in input")
		return
	}
	log.Printf("reconciled %d rows from %d inputs", all.Len(), flag.NArg())

	parts := []batch.Batch{all}
	if *width > 1 {
		parts, err = reconcile.Partition(all, *key, *width)
		if err != nil {
			log.Fatal(err)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		i := i
		g.Go(func() error {
			return write(gctx, parts[i], partPath(*out, i, len(parts)))
		})
	}
	if err = g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d partitions to %s", len(parts), *out)
}

func write(ctx context.Context, b batch.Batch, path string) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()
	return batchio.NewEncoder(f.Writer(ctx)).Encode(b)
}

func partPath(prefix string, part, width int) string {
	return fmt.Sprintf("%s-%03d-of-%03d", prefix, part, width)
}
