// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package rank

import (
	"reflect"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
)

func TestResolve(t *testing.T) {
	table := Table{
		{"rollout", 1}: "/data/rollout_1",
		{"actor", 1}:   "/data/actor_1",
		{"actor", 0}:   "s3://bucket/actor_0",
	}
	sources := Resolve(table, Text)
	want := []Source{
		{"actor", 0, "s3://bucket/actor_0/ASCEND_PROFILER_OUTPUT/trace_view.json"},
		{"actor", 1, "/data/actor_1/ASCEND_PROFILER_OUTPUT/trace_view.json"},
		{"rollout", 1, "/data/rollout_1/ASCEND_PROFILER_OUTPUT/trace_view.json"},
	}
	if got := sources; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	sources = Resolve(table, DB)
	if got, want := sources[1].Path, "/data/actor_1/ASCEND_PROFILER_OUTPUT/ascend_pytorch_profiler_1.db"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := sources[1].Key(), (Key{"actor", 1}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDataKind(t *testing.T) {
	for _, kind := range []DataKind{Text, DB} {
		got, err := ParseDataKind(kind.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != kind {
			t.Errorf("got %v, want %v", got, kind)
		}
	}
	_, err := ParseDataKind("parquet")
	if !errors.Is(errors.NotSupported, err) {
		t.Errorf("got %v, want NotSupported", err)
	}
}

func TestFilter(t *testing.T) {
	for _, c := range []struct {
		in    string
		all   bool
		ranks []int
		str   string
	}{
		{"", true, nil, "all"},
		{"all", true, nil, "all"},
		{" all ", true, nil, "all"},
		{"0,1,3", false, []int{0, 1, 3}, "0,1,3"},
		{"2, x, 5,,-1", false, []int{2, 5}, "2,5"},
		{"x", false, nil, ""},
	} {
		f := ParseFilter(c.in)
		if got, want := f.All(), c.all; got != want {
			t.Errorf("%q: got %v, want %v", c.in, got, want)
		}
		if got, want := f.Ranks(), c.ranks; !reflect.DeepEqual(got, want) {
			t.Errorf("%q: got %v, want %v", c.in, got, want)
		}
		if got, want := f.String(), c.str; got != want {
			t.Errorf("%q: got %v, want %v", c.in, got, want)
		}
	}
}

func TestParseManifest(t *testing.T) {
	table, err := ParseManifest(strings.NewReader(`
# role rank root
actor 0 /data/a0

rollout	3	s3://bucket/r3
`))
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		{"actor", 0}:   "/data/a0",
		{"rollout", 3}: "s3://bucket/r3",
	}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("got %v, want %v", table, want)
	}

	_, err = ParseManifest(strings.NewReader("actor 0 /a\nactor 0 /b\n"))
	if !errors.Is(errors.Exists, err) {
		t.Errorf("got %v, want Exists", err)
	}
	_, err = ParseManifest(strings.NewReader("actor zero /a\n"))
	if !errors.Is(errors.Invalid, err) {
		t.Errorf("got %v, want Invalid", err)
	}
	_, err = ParseManifest(strings.NewReader("actor 0\n"))
	if !errors.Is(errors.Invalid, err) {
		t.Errorf("got %v, want Invalid", err)
	}
}
