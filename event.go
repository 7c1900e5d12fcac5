// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package clustertrace

import (
	"fmt"

	"github.com/grailbio/clustertrace/rank"
)

// CommunicationGroupDomain is the reserved marker domain whose event
// names denote the communication groups a rank takes part in.
const CommunicationGroupDomain = "communication_group"

// An Event is a marker event extracted from a rank's trace. Times are
// in milliseconds; EndMs is always StartMs+DurationMs.
type Event struct {
	Name       string
	Role       string
	Domain     string
	StartMs    float64
	EndMs      float64
	DurationMs float64
	Rank       int
	Tid        int64
	// CommunicationGroup is the comma-separated, sorted set of
	// communication groups of the event's rank. It is set by
	// Aggregate.
	CommunicationGroup string
}

// Key returns the key of the rank that recorded the event.
func (e Event) Key() rank.Key {
	return rank.Key{Role: e.Role, Rank: e.Rank}
}

// Columns are the names of the table's columns, in the order of the
// values returned by Table.Values.
var Columns = []string{
	"name",
	"roll",
	"domain",
	"start_time_ms",
	"end_time_ms",
	"duration_ms",
	"rank_id",
	"tid",
	"communication_group",
}

// A Table is the enriched, cluster-wide event table. Tables are
// created by Aggregate and are not modified thereafter.
type Table struct {
	events []Event
}

// Len returns the number of events in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}

// Row returns the i'th event of the table.
func (t *Table) Row(i int) Event {
	return t.events[i]
}

// Rows returns a copy of the table's events.
func (t *Table) Rows() []Event {
	if t == nil {
		return nil
	}
	rows := make([]Event, len(t.events))
	copy(rows, t.events)
	return rows
}

// Values returns the i'th row of the table as column values, in the
// order of Columns.
func (t *Table) Values(i int) []interface{} {
	e := t.events[i]
	return []interface{}{
		e.Name,
		e.Role,
		e.Domain,
		e.StartMs,
		e.EndMs,
		e.DurationMs,
		e.Rank,
		e.Tid,
		e.CommunicationGroup,
	}
}

// Keys returns the distinct rank keys present in the table, in the
// order in which they first appear.
func (t *Table) Keys() []rank.Key {
	if t == nil {
		return nil
	}
	var (
		keys []rank.Key
		seen = make(map[rank.Key]bool)
	)
	for _, e := range t.events {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// String returns a one-line description of the table.
func (t *Table) String() string {
	return fmt.Sprintf("table(%d events, %d ranks)", t.Len(), len(t.Keys()))
}
