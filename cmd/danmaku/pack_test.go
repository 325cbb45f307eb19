// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/bilibili"
	"github.com/maristie/ass-danmaku/packet"
)

func TestPackFields(t *testing.T) {
	var want packet.Builder
	want.Message(1, func(e *packet.Builder) {
		e.Varint(2, 1500)
		e.Int(3, -1)
		e.Bool(4, true)
		e.String(7, "a\tb")
		e.Message(9, func(*packet.Builder) {})
	})
	want.String(12, "raw")

	var got packet.Builder
	rest, err := packFields(&got, "1( 2v 3i 4% 7q 9() ) 12s", []string{
		"1500", "-1", "true", `a\tb`, "raw", "extra",
	})
	if err != nil {
		t.Fatalf("packFields: unexpected error: %v", err)
	}
	if diff := cmp.Diff(rest, []string{"extra"}); diff != "" {
		t.Errorf("Remaining args (-got, +want):\n%s", diff)
	}
	if !bytes.Equal(got.Bytes(), want.Bytes()) {
		t.Errorf("packFields:\ngot  %q\nwant %q", got.Bytes(), want.Bytes())
	}
}

func TestPackReply(t *testing.T) {
	var b packet.Builder
	_, err := packFields(&b, "1(2v 3v 4v 5v 7s) 1(2v 7s)", []string{
		"1500", "5", "25", "16711680", "hello", "3", "",
	})
	if err != nil {
		t.Fatalf("packFields: unexpected error: %v", err)
	}
	res, err := bilibili.ParseProto(b.Bytes())
	if err != nil {
		t.Fatalf("ParseProto: unexpected error: %v", err)
	}
	want := &danmaku.Result{
		Comments: []danmaku.Comment{{
			Text: "hello", Time: 1500, Mode: danmaku.Top, Size: 25,
			Color: danmaku.PackedColor(16711680),
		}},
		Dropped: 1,
	}
	if diff := cmp.Diff(res, want); diff != "" {
		t.Errorf("ParseProto (-got, +want):\n%s", diff)
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		pat  string
		args []string
	}{
		{"v", []string{"1"}},             // missing field number
		{"0v", []string{"1"}},            // invalid field number
		{"1", nil},                       // missing code
		{"1v", nil},                      // missing argument
		{"1v", []string{"x"}},            // bad varint
		{"1i", []string{"1.5"}},          // bad integer
		{"1%", []string{"maybe"}},        // bad bool
		{"1q", []string{`\z`}},           // bad quoted string
		{"1x", []string{"1"}},            // unknown code
		{"1(2v", []string{"1"}},          // unbalanced
		{"1(2v 3x)", []string{"1", "2"}}, // error in a subpattern
	}
	for _, tc := range tests {
		var b packet.Builder
		if _, err := packFields(&b, tc.pat, tc.args); err == nil {
			t.Errorf("packFields(%q, %q): got nil, want error", tc.pat, tc.args)
		}
	}
}
