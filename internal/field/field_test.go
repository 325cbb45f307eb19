// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package field_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maristie/ass-danmaku/internal/field"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"", 0, true},
		{"   ", 0, true},
		{"0", 0, true},
		{"25", 25, true},
		{" 1.5 ", 1.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"5.", 5, true},
		{"abc", 0, false},
		{"12px", 0, false},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"1,2", 0, false},
	}
	for _, tc := range tests {
		got, ok := field.ParseNumber(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseNumber(%q): got (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNumber(t *testing.T) {
	type rec struct {
		A field.Number `json:"a"`
	}
	tests := []struct {
		input string
		want  field.Number
	}{
		{`{}`, field.Number{}},
		{`{"a":null}`, field.Number{}},
		{`{"a":12}`, field.Number{Value: 12, Raw: "12", OK: true}},
		{`{"a":-0.5}`, field.Number{Value: -0.5, Raw: "-0.5", OK: true}},
		{`{"a":"34"}`, field.Number{Value: 34, Raw: "34", OK: true}},
		{`{"a":""}`, field.Number{OK: true}},
		{`{"a":"x"}`, field.Number{Raw: "x"}},
		{`{"a":true}`, field.Number{}},
		{`{"a":[1]}`, field.Number{}},
		{`{"a":{"b":1}}`, field.Number{}},
	}
	for _, tc := range tests {
		var got rec
		if err := json.Unmarshal([]byte(tc.input), &got); err != nil {
			t.Errorf("Unmarshal %s: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(got.A, tc.want); diff != "" {
			t.Errorf("Unmarshal %s (-got, +want):\n%s", tc.input, diff)
		}
	}
}

func TestNumberAccessors(t *testing.T) {
	tests := []struct {
		input  field.Number
		wantI  int
		wantOK bool
	}{
		{field.Number{}, 0, false},
		{field.NumberOf(3), 3, true},
		{field.NumberOf(-2), -2, true},
		{field.NumberOf(2.5), 0, false},
		{field.NumberOf(1e12), 0, false},
	}
	for _, tc := range tests {
		got, ok := tc.input.Int()
		if got != tc.wantI || ok != tc.wantOK {
			t.Errorf("Int(%+v): got (%d, %v), want (%d, %v)", tc.input, got, ok, tc.wantI, tc.wantOK)
		}
	}
	if v := (field.Number{}).Float(); !math.IsNaN(v) {
		t.Errorf("Float(absent): got %v, want NaN", v)
	}
	if v := field.NumberOf(2.5).Float(); v != 2.5 {
		t.Errorf("Float(2.5): got %v, want 2.5", v)
	}
	if n := field.Parse(" "); n.OK {
		t.Errorf("Parse(blank): got %+v, want absent", n)
	}
	if n := field.Parse("7"); !n.OK || n.Value != 7 {
		t.Errorf("Parse(7): got %+v, want 7", n)
	}
}

func TestString(t *testing.T) {
	type rec struct {
		S field.String `json:"s"`
	}
	tests := []struct {
		input  string
		want   field.String
		truthy bool
	}{
		{`{}`, field.String{}, false},
		{`{"s":null}`, field.String{}, false},
		{`{"s":""}`, field.String{OK: true}, false},
		{`{"s":"hi"}`, field.String{Value: "hi", OK: true}, true},
		{`{"s":"aé"}`, field.String{Value: "aé", OK: true}, true},
		{`{"s":17}`, field.String{Value: "17", OK: true}, true},
		{`{"s":false}`, field.String{}, false},
		{`{"s":["x"]}`, field.String{}, false},
	}
	for _, tc := range tests {
		var got rec
		if err := json.Unmarshal([]byte(tc.input), &got); err != nil {
			t.Errorf("Unmarshal %s: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(got.S, tc.want); diff != "" {
			t.Errorf("Unmarshal %s (-got, +want):\n%s", tc.input, diff)
		}
		if got.S.Truthy() != tc.truthy {
			t.Errorf("Truthy %s: got %v, want %v", tc.input, got.S.Truthy(), tc.truthy)
		}
	}
}

func TestArray(t *testing.T) {
	elts, err := field.Array([]byte(` [1, "two", null, {"x":3}] `))
	if err != nil {
		t.Fatalf("Array: unexpected error: %v", err)
	}
	want := []string{`1`, `"two"`, `null`, `{"x":3}`}
	var got []string
	for _, e := range elts {
		got = append(got, string(e))
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Array (-got, +want):\n%s", diff)
	}

	for _, bad := range []string{``, `null`, `{}`, `"x"`, `[1,`, `[] x`} {
		if got, err := field.Array([]byte(bad)); err == nil {
			t.Errorf("Array(%q): got %v, want error", bad, got)
		}
	}
}

func TestDecode(t *testing.T) {
	var v struct{ X int }
	if field.Decode(json.RawMessage(`null`), &v) {
		t.Error("Decode(null): got true, want false")
	}
	if field.Decode(json.RawMessage(`[1]`), &v) {
		t.Error("Decode(array): got true, want false")
	}
	if !field.Decode(json.RawMessage(`{"X":5}`), &v) || v.X != 5 {
		t.Errorf("Decode: got %+v, want X=5", v)
	}
}
