// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package trace decodes profiler trace files in the Chrome tracing
// format. A trace file is a JSON array of event records; records are
// decoded one at a time so that large traces need not be held in
// memory twice.
package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// Record is a raw event record in the Chrome tracing format, as
// emitted by the profiler. For more details, see:
//	https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU/preview
//
// Fields are kept undecoded until they are used: profilers emit
// records (e.g., metadata) whose fields have other types, and those
// records must not make the trace invalid. Timestamps and durations
// are kept in their textual form so that unit conversions can be
// exact.
type Record struct {
	Name   Value           `json:"name"`
	Domain Value           `json:"domain"`
	Tid    Number          `json:"tid"`
	Ts     Number          `json:"ts"`
	Dur    Number          `json:"dur"`
	Args   json.RawMessage `json:"args"`
}

// ArgMap returns the record's argument bag. ArgMap returns nil if the
// record has no arguments or if they are not a JSON object.
func (r *Record) ArgMap() map[string]interface{} {
	args := bytes.TrimSpace(r.Args)
	if len(args) == 0 || args[0] != '{' {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(args, &m); err != nil {
		return nil
	}
	return m
}

// Value is an undecoded JSON value. The zero Value, and a JSON null,
// represent a missing value.
type Value []byte

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*v = nil
		return nil
	}
	*v = append((*v)[:0], b...)
	return nil
}

// Valid tells whether the value is present.
func (v Value) Valid() bool {
	return len(v) > 0
}

// Str returns the value as a string. It is an error if the value is
// not a JSON string.
func (v Value) Str() (string, error) {
	if len(v) == 0 || v[0] != '"' {
		return "", fmt.Errorf("trace: %s is not a string", v)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", err
	}
	return s, nil
}

// Number is a JSON number that may also be encoded as a string, as
// some profilers quote large timestamps. The zero Number represents a
// missing value. Numbers are validated when they are used: a Number
// may hold any JSON value.
type Number string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*n = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
	default:
		*n = Number(b)
	}
	return nil
}

// Valid tells whether the number is present.
func (n Number) Valid() bool {
	return n != ""
}

// Rat returns the exact value of the number.
func (n Number) Rat() (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(string(n))
	if !ok {
		return nil, fmt.Errorf("trace: invalid number %q", string(n))
	}
	return r, nil
}

// Int64 returns the number as an integer. Integral values in other
// notations (e.g., "1e3") are accepted.
func (n Number) Int64() (int64, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	r, err := n.Rat()
	if err != nil {
		return 0, err
	}
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, fmt.Errorf("trace: %q is not an integer", string(n))
	}
	return r.Num().Int64(), nil
}

// Scale returns n/div, correctly rounded to the nearest float64.
func (n Number) Scale(div int64) (float64, error) {
	r, err := n.Rat()
	if err != nil {
		return 0, err
	}
	f, _ := r.Quo(r, big.NewRat(div, 1)).Float64()
	return f, nil
}

// FormatError is returned when a trace file is valid JSON but is not
// a list of records.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "trace: " + e.Msg
}

// A Reader decodes records from a trace file.
type Reader struct {
	dec   *json.Decoder
	begun bool
	done  bool
}

// NewReader returns a Reader that decodes records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Next decodes the next record into rec. Next returns io.EOF when the
// trace is exhausted. A trace whose top-level value is null contains
// no records. An empty or truncated input is not a valid trace, and
// neither is one with data following its top-level value. Array
// elements that are not objects are returned as empty records.
func (r *Reader) Next(rec *Record) error {
	if r.done {
		return io.EOF
	}
	if !r.begun {
		r.begun = true
		tok, err := r.token()
		if err != nil {
			return err
		}
		switch tok {
		case nil:
			return r.end()
		case json.Delim('['):
		default:
			return &FormatError{fmt.Sprintf("expected a list of records, got %v", tok)}
		}
	}
	if !r.dec.More() {
		tok, err := r.token()
		if err != nil {
			return err
		}
		if tok != json.Delim(']') {
			return &FormatError{fmt.Sprintf("expected end of list, got %v", tok)}
		}
		return r.end()
	}
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	*rec = Record{}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	return json.Unmarshal(raw, rec)
}

// token returns the next token; the end of input is unexpected.
func (r *Reader) token() (json.Token, error) {
	tok, err := r.dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

// end completes the trace: only whitespace may follow the top-level
// value.
func (r *Reader) end() error {
	if _, err := r.dec.Token(); err != io.EOF {
		if err == nil {
			err = &FormatError{"unexpected data after the list of records"}
		}
		return err
	}
	r.done = true
	return io.EOF
}
