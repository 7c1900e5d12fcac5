// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/clustertrace"
	"github.com/grailbio/clustertrace/rank"
	"github.com/olekukonko/tablewriter"
)

var summaryHeader = []string{"role", "rank", "events", "start_ms", "end_ms", "communication_group"}

// summarize returns one summary row for each rank in the table, in
// table order.
func summarize(table *clustertrace.Table) [][]string {
	type summary struct {
		events     int
		start, end float64
		group      string
	}
	var (
		keys      = table.Keys()
		summaries = make(map[rank.Key]*summary)
	)
	for i := 0; i < table.Len(); i++ {
		e := table.Row(i)
		s := summaries[e.Key()]
		if s == nil {
			s = &summary{start: e.StartMs, end: e.EndMs, group: e.CommunicationGroup}
			summaries[e.Key()] = s
		}
		s.events++
		if e.StartMs < s.start {
			s.start = e.StartMs
		}
		if e.EndMs > s.end {
			s.end = e.EndMs
		}
	}
	rows := make([][]string, len(keys))
	for i, key := range keys {
		s := summaries[key]
		rows[i] = []string{
			key.Role,
			strconv.Itoa(key.Rank),
			strconv.Itoa(s.events),
			formatMs(s.start),
			formatMs(s.end),
			s.group,
		}
	}
	return rows
}

func formatMs(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

func writeSummary(w io.Writer, table *clustertrace.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(summaryHeader)
	tw.AppendBulk(summarize(table))
	tw.SetFooter([]string{"", "", strconv.Itoa(table.Len()), "", "", ""})
	tw.Render()
}

func writeRows(w io.Writer, table *clustertrace.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(clustertrace.Columns)
	for i := 0; i < table.Len(); i++ {
		values := table.Values(i)
		row := make([]string, len(values))
		for j, v := range values {
			switch v := v.(type) {
			case float64:
				row[j] = formatMs(v)
			default:
				row[j] = fmt.Sprint(v)
			}
		}
		tw.Append(row)
	}
	tw.Render()
}
