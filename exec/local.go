// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"

	"github.com/grailbio/base/limiter"
	"github.com/grailbio/base/status"
	"github.com/grailbio/base/traverse"
)

// LocalExecutor is an executor that runs units in-process in
// separate goroutines. At most the parser's parallelism units are
// run concurrently.
type localExecutor struct {
	limiter *limiter.Limiter
}

func newLocalExecutor() *localExecutor {
	return &localExecutor{limiter: limiter.New()}
}

func (*localExecutor) Name() string { return "local" }

func (l *localExecutor) Start(p *Parser) (shutdown func()) {
	l.limiter.Release(p.Parallelism())
	return func() {}
}

func (l *localExecutor) Run(ctx context.Context, units []Unit, group *status.Group) []Result {
	results := make([]Result, len(units))
	// Unit errors are recorded in their results; the traversal itself
	// never fails.
	_ = traverse.Each(len(units), func(i int) error {
		u := units[i]
		if err := l.limiter.Acquire(ctx, 1); err != nil {
			results[i] = Result{Unit: u, Err: err}
			return nil
		}
		defer l.limiter.Release(1)
		task := startTask(group, u)
		results[i] = runRecover(ctx, u)
		finishTask(task, results[i])
		return nil
	})
	return results
}
