// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package clustertrace

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/clustertrace/internal/trace"
	"github.com/grailbio/clustertrace/rank"
	"github.com/grailbio/clustertrace/stats"
)

// Trace timestamps and durations are in nanoseconds.
const nsPerMs = 1000 * 1000

// Argument keys that mark a trace record as an mstx marker event.
const (
	argEventType = "event_type"
	argDomain    = "domain"
)

// MSTXExtractor extracts mstx marker events from a rank's JSON trace
// (trace_view.json). A record is a marker event only if its argument
// bag contains both an "event_type" and a "domain" key; all other
// records are skipped.
//
// Files are read through github.com/grailbio/base/file, so any path
// supported by a registered implementation (e.g., S3) may be used.
type MSTXExtractor struct{}

// Extract implements Extractor. Extract returns an error of kind
// errors.NotExist if the trace cannot be opened or read, and of kind
// errors.Integrity if its contents are invalid.
func (MSTXExtractor) Extract(ctx context.Context, src rank.Source, counters *stats.Map) ([]Event, error) {
	f, err := file.Open(ctx, src.Path)
	if err != nil {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("rank %s: open %s", src.Key(), src.Path), err)
	}
	defer func() {
		if err := f.Close(ctx); err != nil {
			log.Error.Printf("%s: close: %v", src.Path, err)
		}
	}()
	var (
		records = counters.Int(stats.Records)
		kept    = counters.Int(stats.Kept)
		dropped = counters.Int(stats.Dropped)
		in      = &ioErrorReader{Reader: f.Reader(ctx)}
		reader  = trace.NewReader(in)
		events  []Event
		rec     trace.Record
		n       int
	)
	for i := 0; ; i++ {
		err := reader.Next(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			if in.err != nil {
				return nil, errors.E(errors.NotExist, fmt.Sprintf("rank %s: read %s", src.Key(), src.Path), in.err)
			}
			return nil, errors.E(errors.Integrity, fmt.Sprintf("rank %s: decode %s: record %d", src.Key(), src.Path, i), err)
		}
		n++
		records.Add(1)
		args := rec.ArgMap()
		_, hasEventType := args[argEventType]
		_, hasDomain := args[argDomain]
		if !hasEventType || !hasDomain {
			dropped.Add(1)
			continue
		}
		event, err := makeEvent(src, &rec, args)
		if err != nil {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("rank %s: %s: record %d", src.Key(), src.Path, i), err)
		}
		events = append(events, event)
		kept.Add(1)
	}
	switch {
	case n == 0:
		log.Error.Printf("warning: rank %s: no MSTX events found in %s", src.Key(), src.Path)
		return nil, nil
	case len(events) == 0:
		log.Printf("rank %s: none of %d records in %s are MSTX events", src.Key(), n, src.Path)
		return nil, nil
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartMs < events[j].StartMs
	})
	return events, nil
}

// makeEvent converts a qualifying trace record into an event. A
// record without a duration is an instantaneous marker.
func makeEvent(src rank.Source, rec *trace.Record, args map[string]interface{}) (Event, error) {
	if !rec.Name.Valid() {
		return Event{}, errors.New("missing name")
	}
	name, err := rec.Name.Str()
	if err != nil {
		return Event{}, err
	}
	if !rec.Ts.Valid() {
		return Event{}, errors.New("missing ts")
	}
	if !rec.Tid.Valid() {
		return Event{}, errors.New("missing tid")
	}
	start, err := rec.Ts.Scale(nsPerMs)
	if err != nil {
		return Event{}, err
	}
	var dur float64
	if rec.Dur.Valid() {
		dur, err = rec.Dur.Scale(nsPerMs)
		if err != nil {
			return Event{}, err
		}
		if dur < 0 {
			return Event{}, fmt.Errorf("negative duration %s", rec.Dur)
		}
	}
	tid, err := rec.Tid.Int64()
	if err != nil {
		return Event{}, err
	}
	var domain string
	if rec.Domain.Valid() {
		if domain, err = rec.Domain.Str(); err != nil {
			return Event{}, err
		}
	} else if s, ok := args[argDomain].(string); ok {
		domain = s
	} else {
		domain = fmt.Sprint(args[argDomain])
	}
	return Event{
		Name:       name,
		Role:       src.Role,
		Domain:     domain,
		StartMs:    start,
		EndMs:      start + dur,
		DurationMs: dur,
		Rank:       src.Rank,
		Tid:        tid,
	}, nil
}

// ioErrorReader records the first non-EOF error returned by its
// underlying reader, so that read failures can be told apart from
// decoding failures.
type ioErrorReader struct {
	io.Reader
	err error
}

func (r *ioErrorReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
