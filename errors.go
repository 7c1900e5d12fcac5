// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package clustertrace

import "github.com/grailbio/base/errors"

// Clustertrace reports failures with errors from
// github.com/grailbio/base/errors. Each failure class has its own
// error kind:
//
//	source unavailable     errors.NotExist      rank skipped
//	malformed trace        errors.Integrity     rank skipped
//	unsupported format     errors.NotSupported  fatal
//	unsupported rank list  errors.Invalid       empty table

// IsSourceUnavailable tells whether err indicates that a rank's trace
// file is missing or cannot be read.
func IsSourceUnavailable(err error) bool {
	return errors.Is(errors.NotExist, err)
}

// IsMalformedTrace tells whether err indicates that a rank's trace
// file could not be parsed.
func IsMalformedTrace(err error) bool {
	return errors.Is(errors.Integrity, err)
}

// IsUnsupportedFormat tells whether err indicates an unknown trace
// format or data kind.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(errors.NotSupported, err)
}

// IsUnsupportedRankFilter tells whether err indicates a rank filter
// other than "all".
func IsUnsupportedRankFilter(err error) bool {
	return errors.Is(errors.Invalid, err)
}
