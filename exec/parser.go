// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"
	"github.com/grailbio/bigmachine"
	"github.com/grailbio/clustertrace"
	"github.com/grailbio/clustertrace/rank"
	"github.com/grailbio/clustertrace/stats"
)

// A Parser builds the cluster event table of a run. It resolves the
// trace of each rank in its rank table, extracts the ranks' events
// with its executor, and aggregates them into a single table.
//
// Parsers are owned by their caller; a parser's executor is started
// by NewParser and must be released with Shutdown.
type Parser struct {
	format   clustertrace.Format
	kind     rank.DataKind
	dataType string
	filter   rank.Filter
	ranks    rank.Table
	p        int
	executor Executor
	shutdown func()
	status   *status.Status

	mu       sync.Mutex
	table    *clustertrace.Table
	stats    stats.Values
	warnings []error
}

// An Option represents a parser configuration parameter value.
type Option func(p *Parser)

// Serial configures a parser to extract ranks one at a time in the
// calling goroutine. This is the default.
var Serial Option = func(p *Parser) {
	p.executor = serialExecutor{}
}

// Local configures a parser to extract ranks in parallel, in-process.
// Unless Parallelism is also given, up to GOMAXPROCS ranks are
// extracted at once.
var Local Option = func(p *Parser) {
	p.executor = newLocalExecutor()
}

// Bigmachine configures a parser to extract ranks on machines
// provided by the given bigmachine system. If any params are
// provided, they are applied to each machine.
func Bigmachine(system bigmachine.System, params ...bigmachine.Param) Option {
	return func(p *Parser) {
		p.executor = newBigmachineExecutor(system, params...)
	}
}

// Parallelism configures the parser with the provided target
// parallelism: the maximum number of ranks extracted at once.
func Parallelism(n int) Option {
	if n <= 0 {
		panic("exec.Parallelism: n <= 0")
	}
	return func(p *Parser) {
		p.p = n
	}
}

// DataType configures the kind of trace data that is read for each
// rank: "text" (the default) or "db".
func DataType(kind string) Option {
	return func(p *Parser) {
		p.dataType = kind
	}
}

// RankList configures the ranks that are parsed: "all" (the default)
// or a comma-separated list of rank ids. Only "all" is currently
// supported: parsing with any other rank list produces an empty table.
func RankList(list string) Option {
	return func(p *Parser) {
		p.filter = rank.ParseFilter(list)
	}
}

// Status configures the parser with a status object to which the
// progress of each parse is reported.
func Status(s *status.Status) Option {
	return func(p *Parser) {
		p.status = s
	}
}

// NewParser returns a parser for traces of the given profiler format
// ("mstx" or "nvtx") of the ranks in the provided table. NewParser
// returns an error of kind errors.NotSupported if the format or data
// type is not supported; no traces are accessed in this case.
func NewParser(format string, ranks rank.Table, options ...Option) (*Parser, error) {
	f, err := clustertrace.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	p := &Parser{format: f, ranks: ranks, dataType: rank.Text.String()}
	for _, opt := range options {
		opt(p)
	}
	if p.kind, err = rank.ParseDataKind(p.dataType); err != nil {
		return nil, err
	}
	if p.executor == nil {
		p.executor = serialExecutor{}
	}
	if p.p == 0 {
		p.p = 1
		if _, ok := p.executor.(*localExecutor); ok {
			p.p = runtime.GOMAXPROCS(0)
		}
	}
	p.shutdown = p.executor.Start(p)
	return p, nil
}

// Format returns the parser's trace format.
func (p *Parser) Format() clustertrace.Format {
	return p.format
}

// Parallelism returns the desired amount of extraction parallelism.
func (p *Parser) Parallelism() int {
	return p.p
}

// Executor returns the parser's executor.
func (p *Parser) Executor() Executor {
	return p.executor
}

// Parse parses the traces of all ranks and aggregates their events
// into a table, which is then available from Table.
//
// Failures of individual ranks are logged and recorded as warnings
// (see Warnings); their ranks are left out of the table. Parse
// returns an error only if ctx is done before parsing completes.
func (p *Parser) Parse(ctx context.Context) error {
	var (
		table    *clustertrace.Table
		vals     = make(stats.Values)
		warnings []error
	)
	switch p.format {
	case clustertrace.MSTX:
		var err error
		table, warnings, err = p.parseMSTX(ctx, vals)
		if err != nil {
			return err
		}
		log.Printf("parsed %s traces: %s %s", p.format, table, vals)
	case clustertrace.NVTX:
		log.Printf("no extractor for %s traces: producing an empty table", p.format)
		table = clustertrace.Aggregate(nil)
	}
	p.mu.Lock()
	p.table = table
	p.stats = vals
	p.warnings = warnings
	p.mu.Unlock()
	return nil
}

func (p *Parser) parseMSTX(ctx context.Context, vals stats.Values) (*clustertrace.Table, []error, error) {
	if !p.filter.All() {
		err := errors.E(errors.Invalid,
			fmt.Sprintf("rank list %q: only all ranks may be parsed", p.filter))
		log.Error.Printf("warning: %v", err)
		return clustertrace.Aggregate(nil), []error{err}, nil
	}
	sources := rank.Resolve(p.ranks, p.kind)
	units := make([]Unit, len(sources))
	for i, src := range sources {
		units[i] = Unit{Source: src, Format: p.format, Kind: p.kind}
	}
	var group *status.Group
	if p.status != nil {
		group = p.status.Groupf("parse %s: %d ranks (%s)", p.format, len(units), p.executor.Name())
	}
	log.Printf("extracting %d ranks with the %s executor (p=%d)", len(units), p.executor.Name(), p.p)
	results := p.executor.Run(ctx, units, group)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var (
		ranks    [][]clustertrace.Event
		warnings []error
	)
	for _, res := range results {
		vals.Merge(res.Stats)
		if res.Err != nil {
			log.Error.Printf("warning: skipping rank %s (%s): %v", res.Unit.Source.Key(), res.Unit.Source.Path, res.Err)
			warnings = append(warnings, res.Err)
			vals[stats.Failed]++
			continue
		}
		vals[stats.Ranks]++
		ranks = append(ranks, res.Events)
	}
	if vals[stats.Ranks] == 0 {
		log.Error.Printf("warning: no valid data collected from any of %d ranks", len(units))
	}
	return clustertrace.Aggregate(ranks), warnings, nil
}

// Table returns the table produced by the last call to Parse, or nil
// if the parser has not parsed any traces.
func (p *Parser) Table() *clustertrace.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table
}

// Stats returns the extraction counters of the last call to Parse.
func (p *Parser) Stats() stats.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.Copy()
}

// Warnings returns the recovered errors of the last call to Parse:
// one for each rank that was skipped, or a single error of kind
// errors.Invalid if the rank list is not supported.
func (p *Parser) Warnings() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.warnings...)
}

// Reset discards the results of the last call to Parse.
func (p *Parser) Reset() {
	p.mu.Lock()
	p.table = nil
	p.stats = nil
	p.warnings = nil
	p.mu.Unlock()
}

// Shutdown tears down the resources associated with the parser's
// executor. It should be called when the parser is discarded.
func (p *Parser) Shutdown() {
	if p.shutdown != nil {
		p.shutdown()
	}
}
