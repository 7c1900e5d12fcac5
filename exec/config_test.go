// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"testing"

	"github.com/grailbio/bigmachine/testsystem"
	"github.com/grailbio/clustertrace"
	"github.com/grailbio/clustertrace/rank"
)

func TestConfigOptions(t *testing.T) {
	for _, c := range []struct {
		config   Config
		executor string
		p        int
	}{
		{Config{ProfilerType: "mstx"}, "serial", 1},
		{Config{ProfilerType: "mstx", Parallelism: 1}, "serial", 1},
		{Config{ProfilerType: "mstx", Parallelism: 8}, "local", 8},
		{Config{ProfilerType: "nvtx", Parallelism: 2, System: testsystem.New()}, "bigmachine", 2},
	} {
		p, err := c.config.NewParser(rank.Table{})
		if err != nil {
			t.Fatal(err)
		}
		if got, want := p.Executor().Name(), c.executor; got != want {
			t.Errorf("%+v: got %v, want %v", c.config, got, want)
		}
		if got, want := p.Parallelism(), c.p; got != want {
			t.Errorf("%+v: got %v, want %v", c.config, got, want)
		}
		p.Shutdown()
	}
}

func TestConfigUnsupported(t *testing.T) {
	for _, c := range []Config{
		{ProfilerType: "xyz"},
		{ProfilerType: "mstx", DataType: "parquet"},
	} {
		if _, err := c.NewParser(rank.Table{}); !clustertrace.IsUnsupportedFormat(err) {
			t.Errorf("%+v: got %v, want unsupported format", c, err)
		}
	}
}
