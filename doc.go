// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
	Package clustertrace builds a cluster-wide event table from the
	per-rank traces of a distributed training run.

	Each rank (identified by a role and a rank id) produces its own
	trace file. Clustertrace extracts the marker events of each file
	independently (the "map" phase), and then merges them into a single
	Table (the "reduce" phase). During the merge, every event is
	annotated with the communication groups of its rank: the names of
	the rank's events recorded under the CommunicationGroupDomain
	domain.

	This package provides the event model, the per-format extractors,
	and the aggregator. Package exec runs extractors across ranks,
	locally or on a bigmachine cluster, and provides the Parser that
	ties the two phases together:

		table := rank.Table{{"actor", 0}: "/data/actor_0_ascend_pt", ...}
		parser, err := exec.NewParser("mstx", table, exec.Local)
		if err != nil {
			log.Fatal(err)
		}
		defer parser.Shutdown()
		if err := parser.Parse(ctx); err != nil {
			log.Fatal(err)
		}
		events := parser.Table()
*/
package clustertrace
