// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"

	"github.com/grailbio/base/status"
)

// SerialExecutor runs units one at a time in the caller's goroutine.
type serialExecutor struct{}

func (serialExecutor) Name() string { return "serial" }

func (serialExecutor) Start(*Parser) (shutdown func()) { return func() {} }

func (serialExecutor) Run(ctx context.Context, units []Unit, group *status.Group) []Result {
	results := make([]Result, len(units))
	for i, u := range units {
		task := startTask(group, u)
		results[i] = runRecover(ctx, u)
		finishTask(task, results[i])
	}
	return results
}
