// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package danmaku_test

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maristie/ass-danmaku"
	"gopkg.in/yaml.v3"
)

func TestValid(t *testing.T) {
	base := danmaku.Comment{Text: "x", Time: 1, Mode: danmaku.ScrollRTL, Size: 25, Color: danmaku.White}
	with := func(f func(*danmaku.Comment)) danmaku.Comment {
		c := base
		f(&c)
		return c
	}
	tests := []struct {
		name  string
		input danmaku.Comment
		want  bool
	}{
		{"Base", base, true},
		{"Zero", danmaku.Comment{}, false},
		{"NoText", with(func(c *danmaku.Comment) { c.Text = "" }), false},
		{"NoMode", with(func(c *danmaku.Comment) { c.Mode = danmaku.ModeNone }), false},
		{"BadMode", with(func(c *danmaku.Comment) { c.Mode = 17 }), false},
		{"Top", with(func(c *danmaku.Comment) { c.Mode = danmaku.Top }), true},
		{"Bottom", with(func(c *danmaku.Comment) { c.Mode = danmaku.Bottom }), true},
		{"ZeroSize", with(func(c *danmaku.Comment) { c.Size = 0 }), false},
		{"NegativeSize", with(func(c *danmaku.Comment) { c.Size = -1 }), false},
		{"TimeZero", with(func(c *danmaku.Comment) { c.Time = 0 }), true},
		{"TimeNegative", with(func(c *danmaku.Comment) { c.Time = -0.001 }), false},
		{"TimeJustUnder", with(func(c *danmaku.Comment) { c.Time = 359999.999 }), true},
		{"TimeLimit", with(func(c *danmaku.Comment) { c.Time = danmaku.MaxTime }), false},
		{"TimeNaN", with(func(c *danmaku.Comment) { c.Time = math.NaN() }), false},
		{"TimeInf", with(func(c *danmaku.Comment) { c.Time = math.Inf(1) }), false},
		{"BlackBottomFlag", with(func(c *danmaku.Comment) { c.Color = danmaku.Color{}; c.Bottom = true }), true},
	}
	for _, tc := range tests {
		if got := tc.input.Valid(); got != tc.want {
			t.Errorf("%s: Valid(%+v) = %v, want %v", tc.name, tc.input, got, tc.want)
		}
	}
}

func TestModeTable(t *testing.T) {
	tab := danmaku.ModeTable{danmaku.ModeNone, danmaku.ScrollRTL, danmaku.Top}
	tests := []struct {
		code int
		want danmaku.Mode
	}{
		{-1, danmaku.ModeNone},
		{0, danmaku.ModeNone},
		{1, danmaku.ScrollRTL},
		{2, danmaku.Top},
		{3, danmaku.ModeNone},
		{1000, danmaku.ModeNone},
	}
	for _, tc := range tests {
		if got := tab.Lookup(tc.code); got != tc.want {
			t.Errorf("Lookup(%d): got %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestModeText(t *testing.T) {
	for _, m := range []danmaku.Mode{danmaku.ModeNone, danmaku.ScrollRTL, danmaku.Top, danmaku.Bottom} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): unexpected error: %v", m, err)
		}
		var got danmaku.Mode
		if err := got.UnmarshalText(text); err != nil {
			t.Errorf("UnmarshalText(%q): unexpected error: %v", text, err)
		} else if got != m {
			t.Errorf("UnmarshalText(%q): got %v, want %v", text, got, m)
		}
	}

	var m danmaku.Mode
	if err := m.UnmarshalText([]byte("bottom")); err != nil || m != danmaku.Bottom {
		t.Errorf("UnmarshalText(bottom): got (%v, %v), want %v", m, err, danmaku.Bottom)
	}
	if err := m.UnmarshalText([]byte("LTR")); err == nil {
		t.Errorf("UnmarshalText(LTR): got %v, want error", m)
	}
	if _, err := danmaku.Mode(9).MarshalText(); err == nil {
		t.Error("MarshalText(9): got nil, want error")
	}
	if got := danmaku.Mode(9).String(); got != "Mode(9)" {
		t.Errorf("String: got %q, want Mode(9)", got)
	}
}

func TestColorText(t *testing.T) {
	tests := []struct {
		input danmaku.Color
		want  string
	}{
		{danmaku.Color{}, "#000000"},
		{danmaku.White, "#ffffff"},
		{danmaku.Color{R: 0x23, G: 0x8d, B: 0x34}, "#238d34"},
	}
	for _, tc := range tests {
		if got := tc.input.String(); got != tc.want {
			t.Errorf("String(%v): got %q, want %q", tc.input, got, tc.want)
		}
		var c danmaku.Color
		if err := c.UnmarshalText([]byte(tc.want)); err != nil {
			t.Errorf("UnmarshalText(%q): unexpected error: %v", tc.want, err)
		} else if c != tc.input {
			t.Errorf("UnmarshalText(%q): got %v, want %v", tc.want, c, tc.input)
		}
		if got := danmaku.ColorOf(tc.input.Uint32()); got != tc.input {
			t.Errorf("ColorOf(%06x): got %v, want %v", tc.input.Uint32(), got, tc.input)
		}
	}
	for _, bad := range []string{"", "ffffff", "#fff", "#gggggg", "#1234567"} {
		var c danmaku.Color
		if err := c.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("UnmarshalText(%q): got %v, want error", bad, c)
		}
	}
}

func TestCollect(t *testing.T) {
	in := []danmaku.Comment{
		{Text: "a", Time: 1, Mode: danmaku.ScrollRTL, Size: 25},
		{},
		{Text: "b", Time: 0.5, Mode: danmaku.Top, Size: 18},
		{Text: "c", Time: danmaku.MaxTime, Mode: danmaku.Top, Size: 18},
		{Text: "d", Time: 2, Mode: danmaku.Bottom, Size: 36},
	}
	got := danmaku.Collect(slices.Values(in))
	want := &danmaku.Result{
		Comments: []danmaku.Comment{in[0], in[2], in[4]},
		Dropped:  2,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Collect (-got, +want):\n%s", diff)
	}

	empty := danmaku.Collect(slices.Values([]danmaku.Comment(nil)))
	if empty.Comments == nil || empty.Len() != 0 {
		t.Errorf("Collect(empty): got %+v, want non-nil empty comments", empty)
	}
}

func TestResultEncoding(t *testing.T) {
	res := &danmaku.Result{
		ID: "42",
		Comments: []danmaku.Comment{{
			Text: "hi", Time: 1.5, Mode: danmaku.Bottom, Size: 25,
			Color: danmaku.Color{R: 255, G: 128}, SourceID: "u1",
		}},
		Dropped: 3,
	}

	const wantJSON = `{"id":"42","comments":[{"text":"hi","time":1.5,"mode":"BOTTOM",` +
		`"size":25,"color":"#ff8000","sourceId":"u1"}],"dropped":3}`
	bits, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("JSON: unexpected error: %v", err)
	} else if string(bits) != wantJSON {
		t.Errorf("JSON: got %s\nwant %s", bits, wantJSON)
	}
	var fromJSON danmaku.Result
	if err := json.Unmarshal(bits, &fromJSON); err != nil {
		t.Fatalf("JSON decode: unexpected error: %v", err)
	} else if diff := cmp.Diff(&fromJSON, res); diff != "" {
		t.Errorf("JSON decode (-got, +want):\n%s", diff)
	}

	ybits, err := yaml.Marshal(res)
	if err != nil {
		t.Fatalf("YAML: unexpected error: %v", err)
	}
	var fromYAML danmaku.Result
	if err := yaml.Unmarshal(ybits, &fromYAML); err != nil {
		t.Fatalf("YAML decode: unexpected error: %v", err)
	} else if diff := cmp.Diff(&fromYAML, res); diff != "" {
		t.Errorf("YAML decode (-got, +want):\n%s\n%s", diff, ybits)
	}
}

func TestMalformed(t *testing.T) {
	err := danmaku.Malformed("test", io.ErrUnexpectedEOF)
	if !errors.Is(err, danmaku.ErrMalformed) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Malformed: got %v, want both sentinels", err)
	}
	if err := danmaku.Malformedf("bad %d", 5); !errors.Is(err, danmaku.ErrMalformed) {
		t.Errorf("Malformedf: got %v, want %v", err, danmaku.ErrMalformed)
	} else if got, want := err.Error(), "malformed document: bad 5"; got != want {
		t.Errorf("Malformedf: got %q, want %q", got, want)
	}
}
