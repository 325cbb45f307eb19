// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package acfun parses AcFun danmaku. Three response shapes are supported:
// the nested-array v4 format ([ParseV4]), and the two object formats that
// wrap a list of comment objects in an "added" field ([ParsePoll]) or a
// "danmakus" field ([ParseList]).
//
// None of the formats carries a correlation ID.
package acfun

import (
	"encoding/json"
	"strings"

	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/internal/field"
)

// Modes maps AcFun mode codes to display modes. Unlike bilibili, codes 2
// and 3 are not treated as scrolling.
var Modes = danmaku.ModeTable{
	0: danmaku.ModeNone,
	1: danmaku.ScrollRTL,
	2: danmaku.ModeNone,
	3: danmaku.ModeNone,
	4: danmaku.Bottom,
	5: danmaku.Top,
}

// v4Record is one leaf of the v4 format.
type v4Record struct {
	// C is a comma-separated tuple: time, color, mode, size, sender,
	// creation time, uuid.
	C field.String `json:"c"`
	M field.String `json:"m"`
}

func (r v4Record) comment() danmaku.Comment {
	if !r.C.OK {
		return danmaku.Comment{}
	}
	p := strings.Split(r.C.Value, ",")
	arg := func(i int) string {
		if i < len(p) {
			return p[i]
		}
		return ""
	}
	mode, _ := field.Parse(arg(2)).Int()
	size, _ := field.Parse(arg(3)).Int()
	return danmaku.Comment{
		Text:     r.M.Value,
		Time:     field.Parse(arg(0)).Float(),
		Mode:     Modes.Lookup(mode),
		Size:     size,
		Color:    danmaku.ParsePackedColor(arg(1)),
		SourceID: arg(6),
	}
}

// ParseV4 parses the v4 format, an array of pages each of which is an array
// of comment records. The pages are concatenated in order. An element of the
// outer array that is not itself an array is treated as a single record.
func ParseV4(content string) (*danmaku.Result, error) {
	pages, err := field.Array([]byte(content))
	if err != nil {
		return nil, danmaku.Malformed("acfun v4", err)
	}
	return danmaku.Collect(func(yield func(danmaku.Comment) bool) {
		for _, page := range pages {
			recs, err := field.Array(page)
			if err != nil {
				recs = []json.RawMessage{page}
			}
			for _, raw := range recs {
				var rec v4Record
				if !field.Decode(raw, &rec) {
					rec = v4Record{}
				}
				if !yield(rec.comment()) {
					return
				}
			}
		}
	}), nil
}

// streamRecord is one comment object of the poll and list formats.
type streamRecord struct {
	Position  field.Number `json:"position"` // milliseconds
	Color     field.Number `json:"color"`
	Mode      field.Number `json:"mode"`
	Size      field.Number `json:"size"`
	Body      field.String `json:"body"`
	DanmakuID field.String `json:"danmakuId"`
}

func (r streamRecord) comment() danmaku.Comment {
	mode, _ := r.Mode.Int()
	size, _ := r.Size.Int()
	return danmaku.Comment{
		Text:     r.Body.Value,
		Time:     r.Position.Float() / 1000,
		Mode:     Modes.Lookup(mode),
		Size:     size,
		Color:    danmaku.ParsePackedColor(r.Color.Raw),
		SourceID: r.DanmakuID.Value,
	}
}

// ParsePoll parses the incremental poll format, an object whose "added"
// field holds the list of new comments.
func ParsePoll(content string) (*danmaku.Result, error) {
	return parseStream("acfun poll", "added", content)
}

// ParseList parses the full list format, an object whose "danmakus" field
// holds the list of comments.
func ParseList(content string) (*danmaku.Result, error) {
	return parseStream("acfun list", "danmakus", content)
}

func parseStream(format, key, content string) (*danmaku.Result, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, danmaku.Malformed(format, err)
	} else if doc == nil {
		return nil, danmaku.Malformedf("%s: document is null", format)
	}
	raw, ok := doc[key]
	if !ok {
		return nil, danmaku.Malformedf("%s: missing %q field", format, key)
	}
	recs, err := field.Array(raw)
	if err != nil {
		return nil, danmaku.Malformed(format, err)
	}
	return danmaku.Collect(func(yield func(danmaku.Comment) bool) {
		for _, raw := range recs {
			var rec streamRecord
			if !field.Decode(raw, &rec) {
				rec = streamRecord{}
			}
			if !yield(rec.comment()) {
				return
			}
		}
	}), nil
}
