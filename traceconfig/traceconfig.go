// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package traceconfig provides a mechanism to configure cluster trace
// parsers from a shared configuration. Traceconfig uses the
// configuration mechanism in package github.com/grailbio/base/config,
// and reads a default profile from $HOME/.clustertrace/config.
package traceconfig

import (
	"flag"
	"os"

	"github.com/grailbio/base/config"
	"github.com/grailbio/base/must"

	// Used to provide ec2system.System bigmachines.
	_ "github.com/grailbio/bigmachine/ec2system"
	"github.com/grailbio/clustertrace/exec"
)

// Path determines the location of the clustertrace profile read by
// Parse.
var Path = os.ExpandEnv("$HOME/.clustertrace/config")

// Parse registers configuration flags and calls flag.Parse. It reads
// the clustertrace configuration from Path, and returns the parser
// configuration given by the profile and any flags provided. Parse
// panics if the configuration is invalid.
func Parse() *exec.Config {
	config.RegisterFlags("", Path)
	flag.Parse()
	must.Nil(config.ProcessFlags())
	return Must()
}

// Must returns the configured parser configuration. It panics if the
// "clustertrace" instance cannot be created.
func Must() *exec.Config {
	var c *exec.Config
	config.Must("clustertrace", &c)
	return c
}
