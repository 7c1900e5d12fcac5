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

// DBExtractor is the extractor for per-rank profiler databases
// (ascend_pytorch_profiler_<rank>.db). Database traces are dispatched
// like text traces, but their extraction is not implemented: each
// rank fails with an error of kind errors.NotSupported, without the
// database being opened.
type DBExtractor struct{}

// Extract implements Extractor.
func (DBExtractor) Extract(ctx context.Context, src rank.Source, counters *stats.Map) ([]Event, error) {
	return nil, errors.E(errors.NotSupported,
		fmt.Sprintf("rank %s: %s: extraction from profiler databases is not supported", src.Key(), src.Path))
}
