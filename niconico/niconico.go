// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package niconico parses niconico danmaku, delivered as a JSON array of
// wrapper objects some of which carry a "chat" comment.
//
// The display mode, size, and color of a chat are given by keyword commands
// in its free-text "mail" field, such as "ue red big".
package niconico

import (
	"bytes"
	"encoding/json"

	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/internal/field"
)

// Font sizes selected by the size commands.
const (
	SizeBig    = 36
	SizeMedium = 25 // the default
	SizeSmall  = 16
)

var modeCommands = []struct {
	keyword string
	mode    danmaku.Mode
}{
	{"ue", danmaku.Top},
	{"shita", danmaku.Bottom},
}

var sizeCommands = []struct {
	keyword string
	size    int
}{
	{"big", SizeBig},
	{"small", SizeSmall},
}

// ParseMode returns the display mode selected by the commands in mail.
// The "ue" command selects Top, otherwise "shita" selects Bottom. If neither
// is present the comment scrolls.
func ParseMode(mail string) danmaku.Mode {
	tokens := danmaku.Keywords(mail)
	for _, c := range modeCommands {
		if tokens.Has(c.keyword) {
			return c.mode
		}
	}
	return danmaku.ScrollRTL
}

// ParseSize returns the font size selected by the commands in mail: "big"
// selects [SizeBig], otherwise "small" selects [SizeSmall]. The default is
// [SizeMedium].
func ParseSize(mail string) int {
	tokens := danmaku.Keywords(mail)
	for _, c := range sizeCommands {
		if tokens.Has(c.keyword) {
			return c.size
		}
	}
	return SizeMedium
}

type wrapper struct {
	Chat json.RawMessage `json:"chat"`
}

type chat struct {
	Thread  field.String `json:"thread"`
	No      field.Number `json:"no"`
	VPos    field.Number `json:"vpos"` // hundredths of a second
	Mail    field.String `json:"mail"`
	Content field.String `json:"content"`
}

func (c chat) comment() danmaku.Comment {
	if !c.Content.Truthy() || !(c.VPos.Float() >= 0) || !c.No.OK || c.No.Value == 0 {
		return danmaku.Comment{}
	}
	return danmaku.Comment{
		Text:     c.Content.Value,
		Time:     c.VPos.Value / 100,
		Mode:     ParseMode(c.Mail.Value),
		Size:     ParseSize(c.Mail.Value),
		Color:    danmaku.ParseKeywordColor(c.Mail.Value),
		SourceID: c.No.Raw,
	}
}

// falsy reports whether a raw JSON value is absent or false in a Boolean
// context.
func falsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

// Parse parses a niconico comment array. Elements without a chat are
// ignored and are not counted as dropped.
//
// The ID of the result is the thread of the first chat that names one. A
// chat is accepted if it has content, a non-negative vpos, and a non-zero
// comment number, which becomes its SourceID.
func Parse(content string) (*danmaku.Result, error) {
	elts, err := field.Array([]byte(content))
	if err != nil {
		return nil, danmaku.Malformed("niconico", err)
	}
	var chats []chat
	for _, elt := range elts {
		var w wrapper
		if !field.Decode(elt, &w) || falsy(w.Chat) {
			continue
		}
		var c chat
		if !field.Decode(w.Chat, &c) {
			c = chat{}
		}
		chats = append(chats, c)
	}

	res := danmaku.Collect(func(yield func(danmaku.Comment) bool) {
		for _, c := range chats {
			if !yield(c.comment()) {
				return
			}
		}
	})
	for _, c := range chats {
		if c.Thread.Truthy() {
			res.ID = c.Thread.Value
			break
		}
	}
	return res, nil
}
