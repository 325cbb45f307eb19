// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package bilibili

import (
	"slices"
	"strconv"

	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/packet"
)

// elem holds the fields of one DanmakuElem message.
type elem struct {
	ID       int64
	Progress int64
	Mode     int64
	FontSize int64
	Color    uint32
	MidHash  string
	Content  string
	CTime    int64
	Weight   int64
	Action   string
	Pool     int64
	IDStr    string
	Attr     int64
}

func (e *elem) schema() packet.Schema {
	return packet.Schema{
		1:  packet.Int64(&e.ID),
		2:  packet.Int64(&e.Progress),
		3:  packet.Int64(&e.Mode),
		4:  packet.Int64(&e.FontSize),
		5:  packet.Uint32(&e.Color),
		6:  packet.String(&e.MidHash),
		7:  packet.String(&e.Content),
		8:  packet.Int64(&e.CTime),
		9:  packet.Int64(&e.Weight),
		10: packet.String(&e.Action),
		11: packet.Int64(&e.Pool),
		12: packet.String(&e.IDStr),
		13: packet.Int64(&e.Attr),
	}
}

func (e *elem) comment() danmaku.Comment {
	id := e.IDStr
	if id == "" && e.ID != 0 {
		id = strconv.FormatInt(e.ID, 10)
	}
	return danmaku.Comment{
		Text:     e.Content,
		Time:     float64(e.Progress),
		Mode:     Modes.Lookup(int(min(max(e.Mode, -1), int64(len(Modes))))),
		Size:     int(min(max(e.FontSize, 0), 1<<31-1)),
		Color:    danmaku.PackedColor(e.Color),
		Bottom:   e.Pool > 0,
		SourceID: id,
	}
}

// ParseProto parses a binary DmSegMobileReply message, whose field 1 is a
// repeated DanmakuElem. The result has no ID.
//
// An element whose contents cannot be decoded is dropped; the bounds of each
// element are fixed by the reply, so the elements around it are unaffected.
// A reply that is itself truncated or corrupt is reported as an error.
func ParseProto(data []byte) (*danmaku.Result, error) {
	var elems []danmaku.Comment
	err := packet.Schema{
		1: packet.Repeated(func(s *packet.Scanner) error {
			var e elem
			if err := e.schema().Decode(s); err != nil {
				elems = append(elems, danmaku.Comment{})
			} else {
				elems = append(elems, e.comment())
			}
			return nil
		}),
	}.Decode(packet.NewScanner(data))
	if err != nil {
		return nil, danmaku.Malformed("bilibili protobuf", err)
	}
	return danmaku.Collect(slices.Values(elems)), nil
}
