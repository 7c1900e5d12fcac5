// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package clustertrace

import (
	"sort"
	"strings"

	"github.com/grailbio/clustertrace/rank"
)

// Aggregate merges the per-rank event sequences produced by
// extractors into a single table, and annotates each event with the
// communication groups of its rank.
//
// Sequences are ordered by rank key before they are concatenated, so
// that the table does not depend on the order in which ranks were
// extracted; the order of events within a sequence is preserved. The
// communication groups of a rank are the distinct names of its events
// in CommunicationGroupDomain, sorted and joined with commas. Events
// of ranks without such events have an empty CommunicationGroup.
//
// Aggregate does not modify the provided sequences.
func Aggregate(ranks [][]Event) *Table {
	var (
		ordered = make([][]Event, 0, len(ranks))
		n       int
	)
	for _, events := range ranks {
		if len(events) == 0 {
			continue
		}
		ordered = append(ordered, events)
		n += len(events)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i][0].Key().Less(ordered[j][0].Key())
	})
	events := make([]Event, 0, n)
	for _, seq := range ordered {
		events = append(events, seq...)
	}

	groups := make(map[rank.Key]map[string]bool)
	for _, e := range events {
		if e.Domain != CommunicationGroupDomain {
			continue
		}
		key := e.Key()
		if groups[key] == nil {
			groups[key] = make(map[string]bool)
		}
		groups[key][e.Name] = true
	}
	joined := make(map[rank.Key]string, len(groups))
	for key, set := range groups {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		joined[key] = strings.Join(names, ",")
	}
	for i := range events {
		events[i].CommunicationGroup = joined[events[i].Key()]
	}
	return &Table{events: events}
}
