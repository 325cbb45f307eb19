// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package bahamut_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/bahamut"
)

func TestParse(t *testing.T) {
	const input = `[
  {"text":"scroll","time":15,"color":"#FFFFFF","position":0,"size":1,"userid":"u"},
  {"text":"top","time":"20","color":"f0a","position":1,"size":2},
  {"text":"bottom","time":0,"color":"#00ff00","position":2,"size":0},
  {"text":"bad position","time":0,"color":"#fff","position":3,"size":0},
  {"text":"negative size","time":0,"color":"#fff","position":0,"size":-1},
  {"text":"fractional","time":0,"color":"#fff","position":0.5,"size":0},
  {"text":"no color","time":0,"position":0,"size":0},
  {"text":"","time":0,"color":"#fff","position":0,"size":0},
  {"text":"late","time":3600000,"color":"#fff","position":0,"size":0},
  {"text":"no time","color":"#fff","position":0,"size":0},
  null,
  7
]`
	got, err := bahamut.Parse(input)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := &danmaku.Result{
		Comments: []danmaku.Comment{
			{Text: "scroll", Time: 1.5, Mode: danmaku.ScrollRTL, Size: 24, Color: danmaku.White},
			{Text: "top", Time: 2, Mode: danmaku.Top, Size: 28, Color: danmaku.Color{R: 255, B: 170}},
			{Text: "bottom", Time: 0, Mode: danmaku.Bottom, Size: 16, Color: danmaku.Color{G: 255}},
		},
		Dropped: 9,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Parse (-got, +want):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{``, `{"text":"x"}`, `null`, `[{"text":"x"`} {
		got, err := bahamut.Parse(input)
		if !errors.Is(err, danmaku.ErrMalformed) {
			t.Errorf("Parse(%q): got (%+v, %v), want %v", input, got, err, danmaku.ErrMalformed)
		}
	}
}

func TestNames(t *testing.T) {
	if got, want := bahamut.ListID("12345"), "bahamut-12345"; got != want {
		t.Errorf("ListID: got %q, want %q", got, want)
	}
	tests := []struct {
		sn, title, want string
	}{
		{"7", "", "BH7"},
		{"7", "Frieren [1]", "BH7 - Frieren [1]"},
	}
	for _, tc := range tests {
		if got := bahamut.ListName(tc.sn, tc.title); got != tc.want {
			t.Errorf("ListName(%q, %q): got %q, want %q", tc.sn, tc.title, got, tc.want)
		}
	}
}

func TestTrimTitle(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"Frieren [1]", "Frieren [1]"},
		{"Frieren [1] - 巴哈姆特動畫瘋", "Frieren [1]"},
		{"A - B - site", "A - B"},
		{"A - two words", "A - two words"},
		{"A - ", "A"},
	}
	for _, tc := range tests {
		if got := bahamut.TrimTitle(tc.input); got != tc.want {
			t.Errorf("TrimTitle(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}
