// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package stats provides collections of counters used to report
// extraction progress. Each counter belongs to a snapshottable
// collection, and snapshots taken on different ranks (and machines)
// can be merged.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Names of the counters maintained by trace extractors.
const (
	// Records is the number of raw trace records read.
	Records = "records"
	// Kept is the number of records that qualified as marker events.
	Kept = "kept"
	// Dropped is the number of records that did not qualify.
	Dropped = "dropped"
	// Ranks is the number of ranks that were extracted successfully.
	Ranks = "ranks"
	// Failed is the number of ranks whose extraction failed.
	Failed = "failed"
)

// Values is a snapshot of the values in a collection.
type Values map[string]int64

// Copy returns a copy of the values v.
func (v Values) Copy() Values {
	w := make(Values)
	for k, v := range v {
		w[k] = v
	}
	return w
}

// Merge adds the values in w to v.
func (v Values) Merge(w Values) {
	for k, n := range w {
		v[k] += n
	}
}

// String returns an abbreviated string with the values in this
// snapshot sorted by key.
func (v Values) String() string {
	var keys []string
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		keys[i] = fmt.Sprintf("%s:%d", key, v[key])
	}
	return strings.Join(keys, " ")
}

// A Map is a set of counters keyed by name. A nil *Map discards
// all updates.
type Map struct {
	mu     sync.Mutex
	values map[string]*Int
}

// NewMap returns a fresh Map.
func NewMap() *Map {
	return &Map{
		values: make(map[string]*Int),
	}
}

// Int returns the counter with the provided name. The counter is
// created if it does not already exist. Int returns nil if m is nil.
func (m *Map) Int(name string) *Int {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	v := m.values[name]
	if v == nil {
		v = new(Int)
		m.values[name] = v
	}
	m.mu.Unlock()
	return v
}

// AddAll adds all counters in the map to the provided snapshot.
func (m *Map) AddAll(vals Values) {
	if m == nil {
		return
	}
	m.mu.Lock()
	for k, v := range m.values {
		vals[k] += v.Get()
	}
	m.mu.Unlock()
}

// Snapshot returns the current values of all counters in the map.
func (m *Map) Snapshot() Values {
	vals := make(Values)
	m.AddAll(vals)
	return vals
}

// An Int is a integer counter. Ints can be atomically
// incremented and set. A nil *Int ignores updates and reads as 0.
type Int struct {
	val int64
}

// Add increments v by delta.
func (v *Int) Add(delta int64) {
	if v == nil {
		return
	}
	atomic.AddInt64(&v.val, delta)
}

// Set sets the counter's value to val.
func (v *Int) Set(val int64) {
	if v == nil {
		return
	}
	atomic.StoreInt64(&v.val, val)
}

// Get returns the current value of a counter.
func (v *Int) Get() int64 {
	if v == nil {
		return 0
	}
	return atomic.LoadInt64(&v.val)
}
