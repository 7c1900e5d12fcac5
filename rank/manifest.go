// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package rank

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// ParseManifest reads a table from a line-oriented manifest. Each
// line contains three whitespace-separated fields: the role, the rank
// id, and the root of the rank's profiler output. Blank lines and
// lines beginning with '#' are ignored.
//
//	# role   rank  root
//	actor    0     s3://bucket/run/actor_0_ascend_pt
//	rollout  0     /data/run/rollout_0_ascend_pt
func ParseManifest(r io.Reader) (Table, error) {
	var (
		table   = make(Table)
		scanner = bufio.NewScanner(r)
		lineno  int
	)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("manifest line %d: expected 3 fields, got %d", lineno, len(fields)))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil || id < 0 {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("manifest line %d: invalid rank id %q", lineno, fields[1]))
		}
		key := Key{fields[0], id}
		if _, ok := table[key]; ok {
			return nil, errors.E(errors.Exists,
				fmt.Sprintf("manifest line %d: duplicate rank %s", lineno, key))
		}
		table[key] = fields[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
