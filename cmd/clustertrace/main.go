// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Clustertrace parses the marker traces of a distributed training run
// and prints a summary of the resulting cluster event table.
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
	"github.com/grailbio/clustertrace/exec"
	"github.com/grailbio/clustertrace/rank"
	"github.com/grailbio/clustertrace/traceconfig"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: clustertrace [flags] manifest

Command clustertrace parses the marker traces of each rank listed in
the manifest and prints a per-rank summary of the cluster event table.
Each manifest line names a rank and its profiler output directory:

	role rank root

Roots may be local paths or S3 URLs. Parsing is configured by the
clustertrace profile; see -profile.
`)
		flag.PrintDefaults()
		os.Exit(2)
	}
	var (
		consoleStatus = flag.Bool("status", false, "print extraction status to stdout")
		rows          = flag.Bool("rows", false, "print every event of the table instead of a summary")
	)
	log.AddFlags()
	config := traceconfig.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	ctx := context.Background()
	ranks, err := readManifest(ctx, flag.Arg(0))
	must.Nil(err, "manifest ", flag.Arg(0))

	options := []exec.Option{}
	if *consoleStatus {
		var (
			s       = new(status.Status)
			console status.Reporter
		)
		go console.Go(os.Stdout, s)
		options = append(options, exec.Status(s))
	}
	p, err := config.NewParser(ranks, options...)
	must.Nil(err)
	defer p.Shutdown()
	must.Nil(p.Parse(ctx))

	table := p.Table()
	if *rows {
		writeRows(os.Stdout, table)
	} else {
		writeSummary(os.Stdout, table)
	}
	if warnings := p.Warnings(); len(warnings) > 0 {
		log.Error.Printf("warning: %d ranks could not be parsed", len(warnings))
	}
}

func readManifest(ctx context.Context, path string) (rank.Table, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	ranks, err := rank.ParseManifest(f.Reader(ctx))
	if closeErr := f.Close(ctx); err == nil {
		err = closeErr
	}
	return ranks, err
}
