// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package clustertrace

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/clustertrace/rank"
	"github.com/grailbio/clustertrace/stats"
)

// Format is the marker format of a run's traces.
type Format int

const (
	// MSTX is the marker format of the Ascend mstx profiler
	// extension.
	MSTX Format = iota
	// NVTX is the NVIDIA tools extension marker format.
	NVTX
)

// ParseFormat returns the format named by s: "mstx" or "nvtx".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "mstx":
		return MSTX, nil
	case "nvtx":
		return NVTX, nil
	}
	return 0, errors.E(errors.NotSupported, fmt.Sprintf("unsupported profiler type %q", s))
}

func (f Format) String() string {
	switch f {
	case MSTX:
		return "mstx"
	case NVTX:
		return "nvtx"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// An Extractor reads the marker events of a single rank. Extractors
// are stateless and may be invoked concurrently on different sources.
// Extract returns the rank's events in start order; the events'
// CommunicationGroup is not set. Progress is reported to counters,
// which may be nil.
type Extractor interface {
	Extract(ctx context.Context, src rank.Source, counters *stats.Map) ([]Event, error)
}

// NewExtractor returns the extractor for traces of the given format
// and data kind.
func NewExtractor(format Format, kind rank.DataKind) (Extractor, error) {
	switch format {
	case MSTX:
		switch kind {
		case rank.Text:
			return MSTXExtractor{}, nil
		case rank.DB:
			return DBExtractor{}, nil
		}
		return nil, errors.E(errors.NotSupported, fmt.Sprintf("unsupported data type %v", kind))
	case NVTX:
		return nil, errors.E(errors.NotSupported, "no extractor for nvtx traces")
	}
	return nil, errors.E(errors.NotSupported, fmt.Sprintf("unsupported profiler type %v", format))
}
