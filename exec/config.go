// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"github.com/grailbio/base/config"
	"github.com/grailbio/bigmachine"
	"github.com/grailbio/clustertrace/rank"
)

// Config is a parser configuration, as provided by the "clustertrace"
// config instance.
type Config struct {
	// ProfilerType is the trace format: "mstx" or "nvtx".
	ProfilerType string
	// DataType is the kind of trace data read for each rank.
	DataType string
	// RankList selects the ranks that are parsed.
	RankList string
	// Parallelism is the maximum number of ranks extracted at once.
	Parallelism int
	// System is the bigmachine system on which ranks are extracted.
	// If nil, ranks are extracted locally.
	System bigmachine.System
}

// Options returns the parser options corresponding to the
// configuration.
func (c *Config) Options() []Option {
	var opts []Option
	if c.System != nil {
		opts = append(opts, Bigmachine(c.System))
	} else if c.Parallelism > 1 {
		opts = append(opts, Local)
	} else {
		opts = append(opts, Serial)
	}
	if c.Parallelism > 0 {
		opts = append(opts, Parallelism(c.Parallelism))
	}
	if c.DataType != "" {
		opts = append(opts, DataType(c.DataType))
	}
	if c.RankList != "" {
		opts = append(opts, RankList(c.RankList))
	}
	return opts
}

// NewParser returns a new parser for the provided ranks, as
// configured by c and any additional options.
func (c *Config) NewParser(ranks rank.Table, options ...Option) (*Parser, error) {
	return NewParser(c.ProfilerType, ranks, append(c.Options(), options...)...)
}

func init() {
	config.Register("clustertrace", func(constr *config.Constructor) {
		c := new(Config)
		constr.StringVar(&c.ProfilerType, "profiler-type", "mstx", "the marker format of the traces: mstx or nvtx")
		constr.StringVar(&c.DataType, "data-type", rank.Text.String(), "the kind of trace data read for each rank: text or db")
		constr.StringVar(&c.RankList, "rank-list", rank.All, "the ranks to parse: all, or a comma-separated list of rank ids")
		constr.IntVar(&c.Parallelism, "parallelism", 1, "the maximum number of ranks extracted at once")
		constr.InstanceVar(&c.System, "system", "", "the bigmachine system used for extraction; local if empty")
		constr.Doc = "clustertrace configures cluster trace parsing"
		constr.New = func() (interface{}, error) {
			return c, nil
		}
	})
}
