// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package exec implements the execution of cluster trace parsing:
// per-rank extraction is fanned out to an Executor, and the results
// are gathered and aggregated by a Parser.
package exec

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/status"
	"github.com/grailbio/clustertrace"
	"github.com/grailbio/clustertrace/rank"
	"github.com/grailbio/clustertrace/stats"
)

// A Unit is an independent unit of work: the extraction of a single
// rank's trace. Units are values and may be sent to remote workers.
type Unit struct {
	Source rank.Source
	Format clustertrace.Format
	Kind   rank.DataKind
}

func (u Unit) String() string {
	return fmt.Sprintf("%s %s(%s)", u.Source, u.Format, u.Kind)
}

// A Result is the outcome of a unit: either its events or an error.
type Result struct {
	Unit   Unit
	Events []clustertrace.Event
	Stats  stats.Values
	Err    error
}

// Executor runs units of work on behalf of a Parser. Units are
// independent of one another and may be run in any order and with any
// degree of parallelism.
type Executor interface {
	// Name returns a human-friendly name for this executor.
	Name() string

	// Start starts the executor. It is called once by the parser that
	// owns it, before any call to Run. Start returns a function that
	// is called when the parser is shut down.
	Start(*Parser) (shutdown func())

	// Run runs each of the provided units and returns their results,
	// in unit order. Run returns only after every unit has completed
	// or failed. A failed unit does not affect its siblings.
	Run(ctx context.Context, units []Unit, group *status.Group) []Result
}

// newExtractor returns the extractor for a unit.
var newExtractor = clustertrace.NewExtractor

// run runs the unit in the calling goroutine.
func (u Unit) run(ctx context.Context) Result {
	res := Result{Unit: u}
	x, err := newExtractor(u.Format, u.Kind)
	if err != nil {
		res.Err = err
		return res
	}
	counters := stats.NewMap()
	res.Events, res.Err = x.Extract(ctx, u.Source, counters)
	res.Stats = counters.Snapshot()
	return res
}

// runRecover runs the unit, turning a panic into a fatal unit error.
func runRecover(ctx context.Context, u Unit) (res Result) {
	defer func() {
		if e := recover(); e != nil {
			stack := debug.Stack()
			err := fmt.Errorf("panic while extracting %s: %v\n%s", u.Source, e, string(stack))
			res = Result{Unit: u, Err: errors.E(err, errors.Fatal)}
		}
	}()
	return u.run(ctx)
}

// startTask starts a status task for the unit in the provided
// group, which may be nil.
func startTask(group *status.Group, u Unit) *status.Task {
	if group == nil {
		return nil
	}
	task := group.Start(u.Source.Key().String())
	task.Print(u.Source.Path)
	return task
}

// finishTask reports the result of a unit to its status task.
func finishTask(task *status.Task, res Result) {
	if task == nil {
		return
	}
	if res.Err != nil {
		task.Printf("error: %v", res.Err)
	} else {
		task.Printf("%d events %s", len(res.Events), res.Stats)
	}
	task.Done()
}

// failAll returns results for units that could not be run at all.
func failAll(units []Unit, err error) []Result {
	results := make([]Result, len(units))
	for i, u := range units {
		results[i] = Result{Unit: u, Err: errors.E(fmt.Sprintf("rank %s", u.Source.Key()), err)}
	}
	return results
}
