// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package rank describes the per-rank inputs of a cluster trace
// analysis: the (role, rank) keys that identify a participating
// process, the table that maps each key to its profiling output
// directory, and the resolution of that directory into the trace file
// that is to be parsed.
package rank

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// OutputDir is the directory, relative to a rank's root, into which
// the profiler deposits its per-rank output.
const OutputDir = "ASCEND_PROFILER_OUTPUT"

// A Key identifies a single rank in a run. Ranks with the same id may
// appear under different roles (e.g., "actor" and "rollout" workers
// of a reinforcement learning job).
type Key struct {
	Role string
	Rank int
}

// String returns a "role/rank" representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Role, k.Rank)
}

// Less orders keys by role and then by rank.
func (k Key) Less(other Key) bool {
	if k.Role != other.Role {
		return k.Role < other.Role
	}
	return k.Rank < other.Rank
}

// A Source is a resolved trace file for a single rank. Sources are
// values and are never modified after resolution.
type Source struct {
	Role string
	Rank int
	Path string
}

// Key returns the source's key.
func (s Source) Key() Key {
	return Key{s.Role, s.Rank}
}

func (s Source) String() string {
	return fmt.Sprintf("%s/%d:%s", s.Role, s.Rank, s.Path)
}

// DataKind is the kind of profiler output that is read for each rank.
type DataKind int

const (
	// Text is JSON trace output (trace_view.json).
	Text DataKind = iota
	// DB is the per-rank profiler database.
	DB
)

// ParseDataKind returns the data kind named by s: "text" or "db".
func ParseDataKind(s string) (DataKind, error) {
	switch s {
	case "text":
		return Text, nil
	case "db":
		return DB, nil
	}
	return 0, errors.E(errors.NotSupported,
		fmt.Sprintf("unsupported data type %q; supported types are [text, db]", s))
}

func (k DataKind) String() string {
	switch k {
	case Text:
		return "text"
	case DB:
		return "db"
	default:
		return fmt.Sprintf("DataKind(%d)", int(k))
	}
}

// Path returns the location of the trace file of the given kind for
// the rank whose profiler output is rooted at root.
func Path(root string, rank int, kind DataKind) string {
	switch kind {
	case DB:
		return file.Join(root, OutputDir, fmt.Sprintf("ascend_pytorch_profiler_%d.db", rank))
	default:
		return file.Join(root, OutputDir, "trace_view.json")
	}
}

// A Table maps each rank in a run to the root of its profiler output.
// Tables are built by the caller, usually by walking an input
// directory or by reading a manifest (see ParseManifest).
type Table map[Key]string

// Keys returns the table's keys in key order.
func (t Table) Keys() []Key {
	keys := make([]Key, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Resolve returns a source for each rank in the table, in key order.
// Resolve does not check that the resolved files exist; a missing file
// is reported when its rank is extracted.
func Resolve(t Table, kind DataKind) []Source {
	keys := t.Keys()
	sources := make([]Source, len(keys))
	for i, key := range keys {
		sources[i] = Source{
			Role: key.Role,
			Rank: key.Rank,
			Path: Path(t[key], key.Rank, kind),
		}
	}
	return sources
}
