// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package stats

import "testing"

func TestStats(t *testing.T) {
	coll := NewMap()
	var (
		kept = coll.Int(Kept)
		_    = coll.Int(Dropped)
	)
	if got, want := kept.Get(), int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	kept.Add(123)
	kept.Add(123)
	if got, want := kept.Get(), int64(123*2); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	all := make(Values)
	coll.AddAll(all)
	coll.AddAll(all)
	if got, want := len(all), 2; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := all[Kept], int64(123*4); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := all[Dropped], int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNilMap(t *testing.T) {
	var coll *Map
	coll.Int(Records).Add(1)
	if got, want := coll.Int(Records).Get(), int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := len(coll.Snapshot()), 0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge(t *testing.T) {
	v := Values{Kept: 1, Records: 3}
	v.Merge(Values{Kept: 2, Dropped: 5})
	if got, want := v.String(), "dropped:5 kept:3 records:3"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	w := v.Copy()
	w.Merge(v)
	if got, want := v[Kept], int64(3); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := w[Kept], int64(6); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
