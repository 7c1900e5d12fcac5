// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package trace

import (
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, s string) ([]Record, error) {
	t.Helper()
	var (
		r       = NewReader(strings.NewReader(s))
		records []Record
	)
	for {
		var rec Record
		err := r.Next(&rec)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func TestReader(t *testing.T) {
	records, err := readAll(t, `[
		{"name": "a", "ph": "X", "ts": 1000000, "dur": "500000", "tid": 7, "args": {"domain": "x"}},
		{"name": "b", "ts": "1.5e6", "args": "not an object"},
		{"name": "c"}
	]`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(records), 3; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	name, err := records[0].Name.Str()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := name, "a"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := records[0].Dur, Number("500000"); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := records[0].ArgMap()["domain"], "x"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if records[1].ArgMap() != nil {
		t.Error("expected nil args for non-object")
	}
	if records[2].Ts.Valid() {
		t.Error("expected missing ts")
	}
	ms, err := records[1].Ts.Scale(1000000)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ms, 1.5; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReaderEmpty(t *testing.T) {
	for _, s := range []string{"[]", "null", " [ ] "} {
		records, err := readAll(t, s)
		if err != nil {
			t.Errorf("%q: %v", s, err)
		}
		if len(records) != 0 {
			t.Errorf("%q: got %v, want none", s, records)
		}
	}
}

func TestReaderErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"[",
		`[{"name": "a"},`,
		`{"traceEvents": []}`,
		`[{"name": "a"}`,
		`[{"name": "a"}, `,
		`[{"name": "a"}] {}`,
		`null null`,
		`[{"name": "a"} {"name": "b"}]`,
		"garbage",
	} {
		if _, err := readAll(t, s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestReaderOtherRecords(t *testing.T) {
	records, err := readAll(t, `[
		{"name": 1, "domain": {"a": 1}, "tid": "Python thread", "ts": true, "dur": [1], "args": 2},
		7,
		"text",
		{"name": null, "ts": null}
	]`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(records), 4; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	rec := records[0]
	if _, err := rec.Name.Str(); err == nil {
		t.Error("expected error for numeric name")
	}
	if _, err := rec.Domain.Str(); err == nil {
		t.Error("expected error for object domain")
	}
	if _, err := rec.Tid.Int64(); err == nil {
		t.Error("expected error for string tid")
	}
	if _, err := rec.Ts.Scale(1000); err == nil {
		t.Error("expected error for boolean ts")
	}
	if rec.ArgMap() != nil {
		t.Error("expected nil args")
	}
	for _, rec := range records[1:] {
		if rec.Name.Valid() || rec.Ts.Valid() || rec.ArgMap() != nil {
			t.Errorf("got %+v, want empty record", rec)
		}
	}
}

func TestNumberInt64(t *testing.T) {
	for _, c := range []struct {
		n    Number
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{"1e3", 1000, true},
		{"-4", -4, true},
		{"1.5", 0, false},
		{"", 0, false},
	} {
		got, err := c.n.Int64()
		if (err == nil) != c.ok {
			t.Errorf("%q: got error %v", c.n, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.n, got, c.want)
		}
	}
}

func TestScaleExact(t *testing.T) {
	// 1700000000123456789ns is not representable as a float64; the
	// scaled value must still be the nearest float64 to the exact
	// quotient.
	n := Number("1700000000123456789")
	got, err := n.Scale(1000000)
	if err != nil {
		t.Fatal(err)
	}
	if want := 1700000000123.456789; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
