// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package bilibili parses bilibili danmaku, in both the XML attribute-list
// format and the binary protobuf segment format.
package bilibili

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/maristie/ass-danmaku"
	"github.com/maristie/ass-danmaku/internal/field"
)

// Modes maps bilibili mode codes to display modes. Codes 1–3 are all
// scrolling variants. Code 6 (left-to-right) and the special codes above it
// are not supported.
var Modes = danmaku.ModeTable{
	0: danmaku.ModeNone,
	1: danmaku.ScrollRTL,
	2: danmaku.ScrollRTL,
	3: danmaku.ScrollRTL,
	4: danmaku.Bottom,
	5: danmaku.Top,
}

// xmlComment is one <d> element of the XML format.
type xmlComment struct {
	// P is a comma-separated tuple: time, mode, size, color, creation time,
	// bottom flag, sender hash, id.
	P    string
	Text string // all character data in the element, including descendants
}

func (x *xmlComment) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "p" {
			x.P = attr.Value
		}
	}
	text, err := textContent(dec)
	x.Text = text
	return err
}

// textContent concatenates the character data of the element whose start
// tag was just read from dec, including text inside nested elements, and
// consumes the input through its end tag.
func textContent(dec *xml.Decoder) (string, error) {
	var buf strings.Builder
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			buf.Write(t)
		}
	}
	return buf.String(), nil
}

// ParseXML parses an XML danmaku document. The ID of the result is the
// document's first chat ID. If there is none, or it is empty, the result
// has no ID.
//
// Control characters other than tab, newline, and carriage return, the
// noncharacters U+FFFE and U+FFFF, and bytes that are not valid UTF-8
// (including encoded lone surrogates) are removed before parsing.
func ParseXML(content string) (*danmaku.Result, error) {
	dec := xml.NewDecoder(strings.NewReader(cleanXML(content)))
	// The content is already text; ignore any declared charset.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var chatID string
	var haveChatID, haveRoot bool
	var recs []xmlComment
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, danmaku.Malformed("bilibili xml", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		haveRoot = true
		switch start.Name.Local {
		case "chatid":
			text, err := textContent(dec)
			if err != nil {
				return nil, danmaku.Malformed("bilibili xml", err)
			}
			if !haveChatID {
				chatID, haveChatID = strings.TrimSpace(text), true
			}
		case "d":
			var rec xmlComment
			if err := dec.DecodeElement(&rec, &start); err != nil {
				return nil, danmaku.Malformed("bilibili xml", err)
			}
			recs = append(recs, rec)
		}
	}
	if !haveRoot {
		return nil, danmaku.Malformedf("bilibili xml: no document element")
	}

	res := danmaku.Collect(func(yield func(danmaku.Comment) bool) {
		for _, rec := range recs {
			if !yield(rec.comment()) {
				return
			}
		}
	})
	if chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, danmaku.Malformedf("bilibili xml: invalid chat ID %q", chatID)
		}
		res.ID = strconv.FormatInt(id, 10)
	}
	return res, nil
}

func (x xmlComment) comment() danmaku.Comment {
	p := strings.Split(x.P, ",")
	arg := func(i int) field.Number {
		if i < len(p) {
			return field.Parse(p[i])
		}
		return field.Number{}
	}
	mode, ok := arg(1).Int()
	if !ok {
		return danmaku.Comment{}
	}
	size, _ := arg(2).Int()
	var color string
	var id string
	if len(p) > 3 {
		color = p[3]
	}
	if len(p) > 7 {
		id = strings.TrimSpace(p[7])
	}
	return danmaku.Comment{
		Text:     x.Text,
		Time:     arg(0).Float(),
		Mode:     Modes.Lookup(mode),
		Size:     size,
		Color:    danmaku.ParsePackedColor(color),
		Bottom:   arg(5).Float() > 0,
		SourceID: id,
	}
}

// cleanXML removes characters that are not permitted in an XML document.
func cleanXML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		i += n
		switch {
		case r == utf8.RuneError && n == 1:
			// invalid encoding, including surrogate halves
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
		case r == 0xFFFE || r == 0xFFFF:
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
