// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package bahamut parses danmaku from the Bahamut animation service, a JSON
// array of comment objects with hex colors and enumerated positions and sizes.
package bahamut

import (
	"regexp"

	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/internal/field"
)

// Modes maps position indexes to display modes.
var Modes = danmaku.ModeTable{danmaku.ScrollRTL, danmaku.Top, danmaku.Bottom}

// Sizes maps size indexes to font sizes.
var Sizes = []int{16, 24, 28}

type record struct {
	Text     field.String `json:"text"`
	Time     field.Number `json:"time"` // tenths of a second
	Color    field.String `json:"color"`
	Position field.Number `json:"position"`
	Size     field.Number `json:"size"`
}

// index reports the value of v if it is an integer in [0, n).
func index(v field.Number, n int) (int, bool) {
	i, ok := v.Int()
	if !ok || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func (r record) comment() danmaku.Comment {
	pos, ok := index(r.Position, len(Modes))
	if !ok || !r.Text.Truthy() || !r.Color.OK {
		return danmaku.Comment{}
	}
	size, ok := index(r.Size, len(Sizes))
	if !ok {
		return danmaku.Comment{}
	}
	return danmaku.Comment{
		Text:  r.Text.Value,
		Time:  r.Time.Float() / 10,
		Mode:  Modes[pos],
		Size:  Sizes[size],
		Color: danmaku.ParseHexColor(r.Color.Value),
	}
}

// Parse parses a Bahamut comment array. A record is accepted if it has text
// and a color, and its position and size are indexes in the range 0..2.
// The result has no ID.
func Parse(content string) (*danmaku.Result, error) {
	elts, err := field.Array([]byte(content))
	if err != nil {
		return nil, danmaku.Malformed("bahamut", err)
	}
	return danmaku.Collect(func(yield func(danmaku.Comment) bool) {
		for _, elt := range elts {
			var rec record
			if !field.Decode(elt, &rec) {
				rec = record{}
			}
			if !yield(rec.comment()) {
				return
			}
		}
	}), nil
}

// ListID returns the list ID for the comments of the episode with serial
// number sn.
func ListID(sn string) string { return "bahamut-" + sn }

// ListName returns a display name for the comments of the episode with serial
// number sn, including the page title if it is not empty.
func ListName(sn, title string) string {
	if title == "" {
		return "BH" + sn
	}
	return "BH" + sn + " - " + title
}

var siteSuffix = regexp.MustCompile(` - \S*$`)

// TrimTitle removes a trailing site name, such as " - 巴哈姆特動畫瘋", from a
// page title.
func TrimTitle(title string) string { return siteSuffix.ReplaceAllString(title, "") }
