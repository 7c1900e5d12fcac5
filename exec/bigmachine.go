// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/limiter"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bigmachine"
	"github.com/grailbio/clustertrace"
	"github.com/grailbio/clustertrace/stats"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"
)

func init() {
	gob.Register(&worker{})
}

// BigmachineExecutor is an executor that runs units on bigmachine
// machines. Each unit is assigned to a machine by hashing its rank
// key, so that repeated runs over the same ranks place them on the
// same machines. Trace paths must be readable from the machines
// (e.g., S3 paths, or local paths on a shared file system).
type bigmachineExecutor struct {
	system bigmachine.System
	params []bigmachine.Param

	p *Parser
	b *bigmachine.B

	machinesOnce sync.Once
	machines     []*bigmachine.Machine
	machinesErr  error

	limiter *limiter.Limiter
}

func newBigmachineExecutor(system bigmachine.System, params ...bigmachine.Param) *bigmachineExecutor {
	return &bigmachineExecutor{system: system, params: params, limiter: limiter.New()}
}

func (*bigmachineExecutor) Name() string { return "bigmachine" }

// Start starts the bigmachine. Machines are started on the first
// call to Run.
func (b *bigmachineExecutor) Start(p *Parser) (shutdown func()) {
	b.p = p
	b.b = bigmachine.Start(b.system)
	b.limiter.Release(p.Parallelism())
	return b.b.Shutdown
}

func (b *bigmachineExecutor) initMachines(ctx context.Context) error {
	b.machinesOnce.Do(func() {
		var (
			n        = 1
			p        = b.p.Parallelism()
			maxprocs = b.b.System().Maxprocs()
		)
		if maxprocs > 0 && p > maxprocs {
			n = p / maxprocs
			if p%maxprocs != 0 {
				n++
			}
		}
		log.Printf("starting %d bigmachines (p=%d, maxprocs=%d)", n, p, maxprocs)
		params := append([]bigmachine.Param{bigmachine.Services{"Worker": &worker{}}}, b.params...)
		machines, err := b.b.Start(ctx, n, params...)
		if err != nil {
			b.machinesErr = err
			return
		}
		log.Printf("waiting for %d machines", len(machines))
		var (
			mu sync.Mutex
			g  errgroup.Group
		)
		for i := range machines {
			m := machines[i]
			g.Go(func() error {
				<-m.Wait(bigmachine.Running)
				if err := m.Err(); err != nil {
					log.Error.Printf("machine %s failed to start: %v", m.Addr, err)
					return nil
				}
				log.Printf("machine %v is ready", m.Addr)
				mu.Lock()
				b.machines = append(b.machines, m)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			b.machinesErr = err
			return
		}
		if len(b.machines) == 0 {
			b.machinesErr = errors.E(errors.Unavailable, "no machines started")
		}
	})
	return b.machinesErr
}

// machine returns the machine to which the unit is assigned.
func (b *bigmachineExecutor) machine(u Unit) *bigmachine.Machine {
	h := murmur3.Sum32([]byte(u.Source.Key().String()))
	return b.machines[int(h%uint32(len(b.machines)))]
}

func (b *bigmachineExecutor) Run(ctx context.Context, units []Unit, group *status.Group) []Result {
	if len(units) == 0 {
		return nil
	}
	if err := b.initMachines(ctx); err != nil {
		return failAll(units, err)
	}
	results := make([]Result, len(units))
	_ = traverse.Each(len(units), func(i int) error {
		u := units[i]
		if err := b.limiter.Acquire(ctx, 1); err != nil {
			results[i] = Result{Unit: u, Err: err}
			return nil
		}
		defer b.limiter.Release(1)
		task := startTask(group, u)
		results[i] = b.run(ctx, u)
		finishTask(task, results[i])
		return nil
	})
	return results
}

func (b *bigmachineExecutor) run(ctx context.Context, u Unit) Result {
	m := b.machine(u)
	var reply extractReply
	if err := m.RetryCall(ctx, "Worker.Extract", u, &reply); err != nil {
		return Result{Unit: u, Err: errors.E(fmt.Sprintf("rank %s: machine %s", u.Source.Key(), m.Addr), err)}
	}
	res := Result{Unit: u, Events: reply.Events, Stats: reply.Stats}
	if reply.Err != "" {
		res.Err = errors.E(reply.ErrKind, reply.Err)
	}
	return res
}

// ExtractReply is the reply to a Worker.Extract call. Unit errors are
// carried in the reply, not as call errors, so that they are not
// confused with machine failures and retried.
type extractReply struct {
	Events  []clustertrace.Event
	Stats   stats.Values
	ErrKind errors.Kind
	Err     string
}

// Worker is the bigmachine service that extracts units remotely.
type worker struct{}

// Extract runs a single unit on the worker.
func (w *worker) Extract(ctx context.Context, u Unit, reply *extractReply) error {
	res := runRecover(ctx, u)
	reply.Events = res.Events
	reply.Stats = res.Stats
	if res.Err != nil {
		log.Debug.Printf("worker: %v", res.Err)
		reply.Err = res.Err.Error()
		reply.ErrKind = kindOf(res.Err)
	}
	return nil
}

// replyKinds are the error kinds that are preserved across a remote
// call.
var replyKinds = []errors.Kind{
	errors.NotExist,
	errors.Integrity,
	errors.NotSupported,
	errors.Invalid,
}

// kindOf returns the first of replyKinds that err (or an error it
// wraps) carries, or errors.Other.
func kindOf(err error) errors.Kind {
	for _, kind := range replyKinds {
		if errors.Is(kind, err) {
			return kind
		}
	}
	return errors.Other
}
