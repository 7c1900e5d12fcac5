// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package rank

import (
	"strconv"
	"strings"
)

// All is the filter value that selects every rank in a table.
const All = "all"

// A Filter selects the ranks that take part in an analysis. The zero
// Filter selects all ranks.
type Filter struct {
	ranks []int
	set   bool
}

// ParseFilter parses a rank filter: either "all" (or the empty
// string), or a comma-separated list of rank ids. Entries that are not
// non-negative integers are ignored.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" || s == All {
		return Filter{}
	}
	f := Filter{set: true}
	for _, elem := range strings.Split(s, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" || strings.HasPrefix(elem, "-") || strings.HasPrefix(elem, "+") {
			continue
		}
		n, err := strconv.Atoi(elem)
		if err != nil {
			continue
		}
		f.ranks = append(f.ranks, n)
	}
	return f
}

// All tells whether the filter selects every rank.
func (f Filter) All() bool {
	return !f.set
}

// Ranks returns the explicitly selected ranks, in the order they were
// given. Ranks returns nil for a filter that selects all ranks.
func (f Filter) Ranks() []int {
	return f.ranks
}

func (f Filter) String() string {
	if f.All() {
		return All
	}
	elems := make([]string, len(f.ranks))
	for i, r := range f.ranks {
		elems[i] = strconv.Itoa(r)
	}
	return strings.Join(elems, ",")
}
